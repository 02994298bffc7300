package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		want           zapcore.Level
	}{
		{"default", false, false, zapcore.InfoLevel},
		{"quiet", true, false, zapcore.WarnLevel},
		{"verbose", false, true, zapcore.DebugLevel},
		{"verbose wins", true, true, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FromFlags(tt.quiet, tt.verbose).Level(); got != tt.want {
				t.Errorf("FromFlags(%v, %v).Level() = %v, want %v", tt.quiet, tt.verbose, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("info lines are bare", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := New(&buf, Normal)
		log.Info("wrote chooser at dist/index.html")
		log.Debug("hidden")

		if got := buf.String(); got != "wrote chooser at dist/index.html\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("warnings carry level and fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := New(&buf, Quiet)
		log.Info("hidden")
		log.Warn("skip inject, missing: dist/a/index.html", zap.String("bundle", "a"))

		got := buf.String()
		if !strings.HasPrefix(got, "WARN: skip inject") {
			t.Errorf("output = %q, want WARN prefix", got)
		}
		if !strings.Contains(got, `"bundle": "a"`) {
			t.Errorf("output = %q, want bundle field", got)
		}
	})

	t.Run("verbose shows debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		New(&buf, Verbose).Debug("pool size", zap.Int("workers", 2))

		if !strings.Contains(buf.String(), "DEBUG: pool size") {
			t.Errorf("output = %q", buf.String())
		}
	})
}
