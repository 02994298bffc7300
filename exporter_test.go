package nbsite

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeRunner records calls and writes an entry page into the -o directory.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	page  string
	fail  map[string]error // keyed by source path
}

func (f *fakeRunner) Run(_ context.Context, argv []string, stdout, _ io.Writer) error {
	f.mu.Lock()
	f.calls = append(f.calls, argv)
	f.mu.Unlock()

	src, out := argv[len(argv)-3], argv[len(argv)-1]
	if err := f.fail[src]; err != nil {
		return err
	}
	_, _ = io.WriteString(stdout, "exported "+src+"\n")

	page := f.page
	if page == "" {
		page = "<!doctype html><html><head><title>x</title></head><body><div id=\"root\"></div></body></html>"
	}
	return os.WriteFile(filepath.Join(out, EntryFile), []byte(page), 0o600)
}

func TestExporter_Argv(t *testing.T) {
	t.Parallel()

	e := NewExporter()
	b := Bundle{Source: "marimo.vox.py", ShortName: "vox", OutputDir: filepath.Join("dist", "vox")}

	want := []string{"uv", "run", "marimo", "-y", "export", "html-wasm", "marimo.vox.py", "-o", filepath.Join("dist", "vox")}
	if diff := cmp.Diff(want, e.Argv(b)); diff != "" {
		t.Errorf("Argv() mismatch (-want +got):\n%s", diff)
	}
	if len(DefaultExportCommand) != 6 {
		t.Error("Argv() must not grow DefaultExportCommand")
	}
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("runs every bundle in order and logs argv", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		bundles := []Bundle{
			{Source: "marimo.a.py", ShortName: "a", OutputDir: filepath.Join(out, "a")},
			{Source: "marimo.b.py", ShortName: "b", OutputDir: filepath.Join(out, "b")},
		}

		core, logs := observer.New(zap.InfoLevel)
		runner := &fakeRunner{}
		var stdout strings.Builder
		e := &Exporter{Command: []string{"tool"}, Runner: runner, Stdout: &stdout, Stderr: io.Discard, Logger: zap.New(core)}

		if err := e.Export(context.Background(), bundles); err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		if len(runner.calls) != 2 || runner.calls[0][1] != "marimo.a.py" || runner.calls[1][1] != "marimo.b.py" {
			t.Errorf("calls = %v", runner.calls)
		}
		if !strings.Contains(stdout.String(), "exported marimo.b.py") {
			t.Error("tool stdout not streamed")
		}
		entries := logs.FilterMessageSnippet("EXPORT: tool marimo.a.py -o").All()
		if len(entries) != 1 {
			t.Errorf("expected EXPORT log line, got %v", logs.All())
		}
		for _, b := range bundles {
			if _, err := os.Stat(b.EntryPath()); err != nil {
				t.Errorf("entry for %s not written: %v", b.ShortName, err)
			}
		}
	})

	t.Run("first failure stops the loop", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		bundles := []Bundle{
			{Source: "marimo.a.py", ShortName: "a", OutputDir: filepath.Join(out, "a")},
			{Source: "marimo.b.py", ShortName: "b", OutputDir: filepath.Join(out, "b")},
			{Source: "marimo.c.py", ShortName: "c", OutputDir: filepath.Join(out, "c")},
		}

		boom := errors.New("boom")
		runner := &fakeRunner{fail: map[string]error{"marimo.b.py": boom}}
		e := &Exporter{Command: []string{"tool"}, Runner: runner, Stdout: io.Discard, Stderr: io.Discard, Logger: zap.NewNop()}

		err := e.Export(context.Background(), bundles)
		if !errors.Is(err, ErrExport) || !errors.Is(err, boom) {
			t.Fatalf("Export() error = %v, want ErrExport wrapping cause", err)
		}

		var exportErr *ExportError
		if !errors.As(err, &exportErr) {
			t.Fatalf("error %T is not *ExportError", err)
		}
		if exportErr.Bundle.ShortName != "b" || exportErr.ExitCode != -1 {
			t.Errorf("ExportError = %+v", exportErr)
		}
		if len(runner.calls) != 2 {
			t.Errorf("runner called %d times, want 2", len(runner.calls))
		}
		if _, err := os.Stat(bundles[0].EntryPath()); err != nil {
			t.Error("earlier export must stay on disk")
		}
	})

	t.Run("empty command", func(t *testing.T) {
		t.Parallel()

		e := &Exporter{Runner: &fakeRunner{}, Logger: zap.NewNop()}
		err := e.ExportOne(context.Background(), Bundle{OutputDir: t.TempDir()})
		if !errors.Is(err, ErrExport) {
			t.Errorf("ExportOne() error = %v, want ErrExport", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		runner := &fakeRunner{}
		e := &Exporter{Command: []string{"tool"}, Runner: runner, Logger: zap.NewNop()}
		if err := e.ExportOne(ctx, Bundle{OutputDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
			t.Errorf("ExportOne() error = %v, want context.Canceled", err)
		}
		if len(runner.calls) != 0 {
			t.Error("runner must not run after cancellation")
		}
	})
}

func TestExportError(t *testing.T) {
	t.Parallel()

	err := &ExportError{Bundle: Bundle{Source: "marimo.vox.py"}, ExitCode: 2, Err: errors.New("exit status 2")}
	if got := err.Error(); got != "export failed: marimo.vox.py: exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrExport) {
		t.Error("ExportError must match ErrExport")
	}
}
