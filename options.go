package nbsite

import (
	"io"

	"go.uber.org/zap"
)

// Option configures a Builder.
type Option func(*Builder)

// builderConfig holds configuration resolved in NewBuilder.
type builderConfig struct {
	assetPath     string
	exportCommand []string
	siteTitle     string
	repoURL       string
	marker        string
	strictNames   bool
	stdout        io.Writer
	stderr        io.Writer
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRunner replaces the subprocess runner used for exports.
func WithRunner(r CommandRunner) Option {
	return func(b *Builder) {
		b.runner = r
	}
}

// WithExportCommand sets the base argv of the export tool.
// Panics if argv is empty (programmer error).
func WithExportCommand(argv ...string) Option {
	if len(argv) == 0 {
		panic("nbsite: WithExportCommand requires a command")
	}
	return func(b *Builder) {
		b.cfg.exportCommand = append([]string(nil), argv...)
	}
}

// WithExportOutput sets where the export tool's stdout and stderr go.
func WithExportOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) {
		b.cfg.stdout = stdout
		b.cfg.stderr = stderr
	}
}

// WithAssetPath loads templates and styles from dir, falling back to the
// embedded defaults for anything not overridden.
func WithAssetPath(dir string) Option {
	return func(b *Builder) {
		b.cfg.assetPath = dir
	}
}

// WithSiteTitle sets the title shown in the nav bar and on the chooser.
func WithSiteTitle(title string) Option {
	return func(b *Builder) {
		b.cfg.siteTitle = title
	}
}

// WithRepoURL sets the link of the chooser heading. Empty disables it.
func WithRepoURL(url string) Option {
	return func(b *Builder) {
		b.cfg.repoURL = url
	}
}

// WithMarker overrides the idempotency marker comment.
func WithMarker(marker string) Option {
	return func(b *Builder) {
		b.cfg.marker = marker
	}
}

// WithStrictNames makes short name collisions fail the build.
func WithStrictNames(strict bool) Option {
	return func(b *Builder) {
		b.cfg.strictNames = strict
	}
}
