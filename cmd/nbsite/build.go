package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/hints"
)

func runBuildCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeBuildFlags(f, s.cfg)
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	b, err := newBuilder(s, env, f.common.quiet)
	if err != nil {
		return err
	}
	report, err := runBuild(ctx, s, b, f.noExport)
	if err != nil {
		return err
	}
	printBuildSummary(env.Stdout, report, f.common.quiet)
	return nil
}

// newBuilder maps the resolved config onto builder options.
func newBuilder(s *session, env *Environment, quiet bool) (*nbsite.Builder, error) {
	toolOut := env.Stderr
	if quiet {
		toolOut = io.Discard
	}

	opts := []nbsite.Option{
		nbsite.WithLogger(s.logger),
		nbsite.WithExportCommand(s.cfg.Export.Command...),
		nbsite.WithExportOutput(toolOut, env.Stderr),
		nbsite.WithSiteTitle(s.cfg.Site.Title),
		nbsite.WithRepoURL(s.cfg.Site.RepoURL),
		nbsite.WithMarker(s.cfg.Nav.Marker),
		nbsite.WithStrictNames(s.cfg.Export.StrictNames),
	}
	if s.cfg.Assets.BasePath != "" {
		opts = append(opts, nbsite.WithAssetPath(s.cfg.Assets.BasePath))
	}
	if env.Runner != nil {
		opts = append(opts, nbsite.WithRunner(env.Runner))
	}
	return nbsite.NewBuilder(opts...)
}

func runBuild(ctx context.Context, s *session, b *nbsite.Builder, skipExport bool) (*nbsite.BuildReport, error) {
	report, err := b.Build(ctx, nbsite.BuildRequest{
		InputDir:   s.cfg.Input.Dir,
		Pattern:    s.cfg.Input.Pattern,
		OutputDir:  s.cfg.Output.Dir,
		SkipExport: skipExport,
	})
	return report, buildHint(err, s.cfg)
}

// buildHint attaches advice for the errors a build commonly hits.
func buildHint(err error, cfg *config.Config) error {
	var exportErr *nbsite.ExportError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, nbsite.ErrExporterNotFound):
		return withHint(err, hints.ForExporterNotFound(cfg.Export.Command[0]))
	case errors.As(err, &exportErr):
		return withHint(err, hints.ForExportFailed(exportErr.Argv))
	case errors.Is(err, nbsite.ErrNoSources):
		return withHint(err, hints.ForNoSources(cfg.Input.Dir, cfg.Input.Pattern))
	case errors.Is(err, nbsite.ErrBrowserConnect):
		return withHint(err, hints.ForBrowserConnect())
	}
	return err
}

func printBuildSummary(w io.Writer, r *nbsite.BuildReport, quiet bool) {
	if !quiet {
		for _, b := range r.Bundles {
			fmt.Fprintf(w, "  %-20s %-16s %s\n", b.Bundle.ShortName, b.Inject, b.Title)
		}
	}
	fmt.Fprintf(w, "done. %d notebook(s) in %s (%d injected, %d unchanged, %d skipped) %s\n",
		len(r.Bundles), filepath.Clean(r.OutputDir),
		r.Count(nbsite.InjectApplied),
		r.Count(nbsite.InjectAlreadyPresent),
		r.Count(nbsite.InjectNoBody)+r.Count(nbsite.InjectMissing),
		r.Duration.Round(time.Millisecond))
}
