package nbsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-nbsite/internal/process"
)

// DefaultExportCommand is the base argv of the export tool. The source path
// and "-o <outdir>" are appended per bundle.
var DefaultExportCommand = []string{"uv", "run", "marimo", "-y", "export", "html-wasm"}

// exportWaitDelay bounds how long Wait blocks on output pipes after the
// process group was killed.
const exportWaitDelay = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error
}

// ExecRunner implements CommandRunner using os/exec. The command runs in its
// own process group, which is killed when ctx is cancelled.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204 -- argv comes from trusted config
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		return process.KillGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = exportWaitDelay

	return cmd.Run()
}

// Exporter runs the export tool for each bundle in order.
type Exporter struct {
	Command []string
	Runner  CommandRunner
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *zap.Logger
}

// NewExporter creates an Exporter with the default command and a real runner.
func NewExporter() *Exporter {
	return &Exporter{
		Command: DefaultExportCommand,
		Runner:  &ExecRunner{},
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		Logger:  zap.NewNop(),
	}
}

// Argv returns the full command line for one bundle.
func (e *Exporter) Argv(b Bundle) []string {
	argv := make([]string, 0, len(e.Command)+3)
	argv = append(argv, e.Command...)
	return append(argv, b.Source, "-o", b.OutputDir)
}

// ExportOne creates the bundle's output directory and runs the tool.
// A failure is returned as *ExportError.
func (e *Exporter) ExportOne(ctx context.Context, b Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(e.Command) == 0 {
		return fmt.Errorf("%w: empty export command", ErrExport)
	}

	if err := os.MkdirAll(b.OutputDir, 0o750); err != nil {
		return &ExportError{Bundle: b, ExitCode: -1, Err: err}
	}

	argv := e.Argv(b)
	e.Logger.Info("EXPORT: " + strings.Join(argv, " "))

	if err := e.Runner.Run(ctx, argv, e.Stdout, e.Stderr); err != nil {
		return classifyRunError(ctx, b, argv, err)
	}
	return nil
}

// Export runs ExportOne for each bundle and stops at the first failure.
func (e *Exporter) Export(ctx context.Context, bundles []Bundle) error {
	for _, b := range bundles {
		if err := e.ExportOne(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func classifyRunError(ctx context.Context, b Bundle, argv []string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrExporterNotFound, argv[0], err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExportError{Bundle: b, Argv: argv, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return &ExportError{Bundle: b, Argv: argv, ExitCode: -1, Err: err}
}
