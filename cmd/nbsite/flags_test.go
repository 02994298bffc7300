package main

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-nbsite/internal/config"
)

func TestParseBuildFlags(t *testing.T) {
	t.Parallel()

	f, err := parseBuildFlags([]string{
		"-i", "nb", "-o", "site", "--pattern", "*.py",
		"--title", "Demo", "--strict-names", "--no-export", "-q",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseBuildFlags() error = %v", err)
	}

	if f.site.input != "nb" || f.site.output != "site" || f.pattern != "*.py" || f.title != "Demo" {
		t.Errorf("flags = %+v", f)
	}
	if !f.strictNames || !f.noExport || !f.common.quiet {
		t.Errorf("bool flags not set: %+v", f)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		parse   func([]string, io.Writer) error
		args    []string
		wantErr error
	}{
		{
			name:    "unknown flag",
			parse:   func(a []string, w io.Writer) error { _, err := parseBuildFlags(a, w); return err },
			args:    []string{"--nope"},
			wantErr: ErrUsage,
		},
		{
			name:    "positional argument",
			parse:   func(a []string, w io.Writer) error { _, err := parseServeFlags(a, w); return err },
			args:    []string{"notebooks"},
			wantErr: ErrUsage,
		},
		{
			name:    "bad duration",
			parse:   func(a []string, w io.Writer) error { _, err := parseVerifyFlags(a, w); return err },
			args:    []string{"-t", "soon"},
			wantErr: ErrUsage,
		},
		{
			name:    "help",
			parse:   func(a []string, w io.Writer) error { _, err := parsePublishFlags(a, w); return err },
			args:    []string{"--help"},
			wantErr: errHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr strings.Builder
			err := tt.parse(tt.args, &stderr)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFlags_HelpPrintsUsageOnce(t *testing.T) {
	t.Parallel()

	var stderr strings.Builder
	if _, err := parseBuildFlags([]string{"-h"}, &stderr); !errors.Is(err, errHelp) {
		t.Fatalf("error = %v, want errHelp", err)
	}
	if n := strings.Count(stderr.String(), "Usage:"); n != 1 {
		t.Errorf("usage printed %d times:\n%s", n, stderr.String())
	}
}

func TestParseServeAndVerifyFlags(t *testing.T) {
	t.Parallel()

	s, err := parseServeFlags([]string{"--addr", ":9000", "--no-watch", "--title", "T"}, io.Discard)
	if err != nil {
		t.Fatalf("parseServeFlags() error = %v", err)
	}
	if s.addr != ":9000" || !s.noWatch || s.noBuild || s.build.title != "T" {
		t.Errorf("serve flags = %+v", s)
	}

	v, err := parseVerifyFlags([]string{"-t", "5s", "-w", "2", "--json"}, io.Discard)
	if err != nil {
		t.Fatalf("parseVerifyFlags() error = %v", err)
	}
	if v.timeout != 5*time.Second || v.workers != 2 || !v.json {
		t.Errorf("verify flags = %+v", v)
	}
}

func TestMergeBuildFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Site.Title = "from config"
	cfg.Output.Dir = "from-config"

	mergeBuildFlags(&buildFlags{
		site:        siteFlags{output: "from-flag"},
		assetPath:   "./assets",
		strictNames: true,
	}, cfg)

	if cfg.Output.Dir != "from-flag" {
		t.Errorf("Output.Dir = %q, flag must win", cfg.Output.Dir)
	}
	if cfg.Site.Title != "from config" {
		t.Errorf("Site.Title = %q, unset flag must keep config", cfg.Site.Title)
	}
	if cfg.Assets.BasePath != "./assets" || !cfg.Export.StrictNames {
		t.Errorf("cfg = %+v", cfg)
	}
}
