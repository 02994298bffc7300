// Package hints appends actionable advice to error messages.
// Every hint renders as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-nbsite/internal/fileutil"
)

// IsInContainer reports whether we run inside Docker or a similar runtime.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a CI runner is detected from its environment.
func InCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForExporterNotFound explains how to get the export tool on PATH.
func ForExporterNotFound(bin string) string {
	if bin == "uv" {
		return format("install uv (https://docs.astral.sh/uv/) or set export.command in nbsite.yaml")
	}
	return format("make sure " + bin + " is on PATH or set export.command in nbsite.yaml")
}

// ForExportFailed points at the failing command so it can be rerun by hand.
func ForExportFailed(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return format("rerun manually to see the full output: " + strings.Join(argv, " "))
}

// ForNoSources suggests input flags when the glob matched nothing.
func ForNoSources(dir, pattern string) string {
	return format("no " + pattern + " in " + dir + "; use --input or --pattern")
}

// ForBrowserConnect returns hints for headless Chrome launch failures.
func ForBrowserConnect() string {
	var hints []string

	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForConfigNotFound suggests --config or creating one of the searched files.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/nbsite.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "nbsite"+string(os.PathSeparator)) {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForPublishCredentials names the env vars the publisher reads.
func ForPublishCredentials() string {
	return format("set NBSITE_S3_ACCESS_KEY and NBSITE_S3_SECRET_KEY")
}

// ForAddrInUse suggests another listen address.
func ForAddrInUse(addr string) string {
	return format(addr + " is busy; pick another with --addr")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
