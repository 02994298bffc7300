//go:build !windows

package nbsite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestExecRunner_ExitCode(t *testing.T) {
	t.Parallel()

	e := &Exporter{
		Command: []string{"sh", "-c", "echo out; echo err >&2; exit 3", "sh"},
		Runner:  &ExecRunner{},
		Logger:  zap.NewNop(),
	}
	var stdout, stderr strings.Builder
	e.Stdout, e.Stderr = &stdout, &stderr

	b := Bundle{Source: "marimo.vox.py", ShortName: "vox", OutputDir: filepath.Join(t.TempDir(), "vox")}
	err := e.ExportOne(context.Background(), b)

	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("ExportOne() error = %v, want *ExportError", err)
	}
	if exportErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", exportErr.ExitCode)
	}
	if stdout.String() != "out\n" || stderr.String() != "err\n" {
		t.Errorf("stdout = %q, stderr = %q", stdout.String(), stderr.String())
	}
}

func TestExecRunner_NotFound(t *testing.T) {
	t.Parallel()

	e := &Exporter{
		Command: []string{"nbsite-no-such-exporter-7f3a"},
		Runner:  &ExecRunner{},
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		Logger:  zap.NewNop(),
	}
	err := e.ExportOne(context.Background(), Bundle{OutputDir: t.TempDir()})
	if !errors.Is(err, ErrExporterNotFound) {
		t.Errorf("ExportOne() error = %v, want ErrExporterNotFound", err)
	}
}

func TestExecRunner_CancelKillsGroup(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := (&ExecRunner{}).Run(ctx, []string{"sh", "-c", "sleep 30 & sleep 30"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run() took %v after cancel", elapsed)
	}
}
