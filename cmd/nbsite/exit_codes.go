package main

import (
	"errors"
	"os"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/devserver"
	"github.com/alnah/go-nbsite/internal/publish"
)

// Exit codes for the nbsite CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // No sources, file not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// maxToolExitCode is the highest export tool status passed through.
// 126 and above are reserved by shells.
const maxToolExitCode = 125

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Export failures surface the tool's own status.
	var exportErr *nbsite.ExportError
	if errors.As(err, &exportErr) {
		if exportErr.ExitCode >= 1 && exportErr.ExitCode <= maxToolExitCode {
			return exportErr.ExitCode
		}
		return ExitGeneral
	}

	// Browser errors (exit 4)
	if errors.Is(err, nbsite.ErrBrowserConnect) ||
		errors.Is(err, nbsite.ErrPageCreate) ||
		errors.Is(err, nbsite.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, nbsite.ErrNoSources) ||
		errors.Is(err, nbsite.ErrChooserWrite) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, publish.ErrEmptySite) ||
		errors.Is(err, devserver.ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, nbsite.ErrShortNameCollision) ||
		errors.Is(err, nbsite.ErrInvalidAssetPath) ||
		errors.Is(err, publish.ErrNoBucket) ||
		errors.Is(err, publish.ErrNoEndpoint) ||
		errors.Is(err, publish.ErrCredentials) {
		return ExitUsage
	}

	return ExitGeneral
}
