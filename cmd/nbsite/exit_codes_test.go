package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/devserver"
	"github.com/alnah/go-nbsite/internal/publish"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGeneral},

		// Export tool status passes through
		{"export exit 2", &nbsite.ExportError{ExitCode: 2}, 2},
		{"export exit 125", &nbsite.ExportError{ExitCode: 125}, 125},
		{"export exit 126", &nbsite.ExportError{ExitCode: 126}, ExitGeneral},
		{"export killed", &nbsite.ExportError{ExitCode: -1}, ExitGeneral},
		{"wrapped export", fmt.Errorf("build: %w", &nbsite.ExportError{ExitCode: 9}), 9},
		{"exporter not found", nbsite.ErrExporterNotFound, ExitGeneral},

		// Browser
		{"browser connect", nbsite.ErrBrowserConnect, ExitBrowser},
		{"page load", fmt.Errorf("%w: x", nbsite.ErrPageLoad), ExitBrowser},
		{"verify failed", nbsite.ErrVerify, ExitGeneral},

		// I/O
		{"no sources", fmt.Errorf("%w: marimo.*.py in .", nbsite.ErrNoSources), ExitIO},
		{"not exist", os.ErrNotExist, ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"empty site", publish.ErrEmptySite, ExitIO},
		{"listen", devserver.ErrListen, ExitIO},

		// Usage
		{"usage", ErrUsage, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config invalid", config.ErrConfigInvalid, ExitUsage},
		{"collision", nbsite.ErrShortNameCollision, ExitUsage},
		{"credentials", withHint(publish.ErrCredentials, "\n  hint: x"), ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	t.Parallel()

	err := withHint(publish.ErrCredentials, "\n  hint: set keys")
	if err.Error() != "missing S3 credentials\n  hint: set keys" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, publish.ErrCredentials) {
		t.Error("hint must keep the error identity")
	}
	if withHint(nil, "x") != nil {
		t.Error("withHint(nil) must be nil")
	}
	if withHint(publish.ErrCredentials, "") != publish.ErrCredentials {
		t.Error("empty hint must return the error unchanged")
	}
}
