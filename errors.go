package nbsite

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrNoSources          = errors.New("no notebook sources found")
	ErrExport             = errors.New("export failed")
	ErrExporterNotFound   = errors.New("export tool not found")
	ErrInject             = errors.New("nav injection failed")
	ErrChooserWrite       = errors.New("failed to write chooser page")
	ErrShortNameCollision = errors.New("short name collision")
	ErrInvalidAssetPath   = errors.New("invalid asset path")

	// Verification errors.
	ErrVerify         = errors.New("verification failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)

// ExportError reports a failed export of one bundle. ExitCode is the
// tool's exit status, or -1 when it did not exit normally.
type ExportError struct {
	Bundle   Bundle
	Argv     []string
	ExitCode int
	Err      error
}

func (e *ExportError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%v: %s: exit status %d", ErrExport, e.Bundle.Source, e.ExitCode)
	}
	return fmt.Sprintf("%v: %s: %v", ErrExport, e.Bundle.Source, e.Err)
}

// Unwrap exposes ErrExport and the underlying cause to errors.Is.
func (e *ExportError) Unwrap() []error {
	return []error{ErrExport, e.Err}
}
