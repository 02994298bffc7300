package nbsite

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/pipeline"
)

// InjectStatus reports what happened to one bundle's entry file.
type InjectStatus = pipeline.InjectStatus

// Inject statuses.
const (
	InjectPending        = pipeline.InjectPending
	InjectApplied        = pipeline.InjectApplied
	InjectAlreadyPresent = pipeline.InjectAlreadyPresent
	InjectNoBody         = pipeline.InjectNoBody
	InjectMissing        = pipeline.InjectMissing
)

// Injector inserts the navigation bar into exported entry files.
type Injector struct {
	nav       pipeline.NavInjector
	siteTitle string
	logger    *zap.Logger
}

// NewInjector creates an Injector.
func NewInjector(nav pipeline.NavInjector, siteTitle string, logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Injector{nav: nav, siteTitle: siteTitle, logger: logger}
}

// InjectFile injects the nav into the file at path. Missing files and
// files without a <body> are skipped and reported through the status.
func (in *Injector) InjectFile(ctx context.Context, path string, data pipeline.NavData) (InjectStatus, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path is inside the output dir
	if err != nil {
		if os.IsNotExist(err) {
			in.logger.Warn("skip inject, missing: " + path)
			return InjectMissing, nil
		}
		return 0, fmt.Errorf("%w: reading %s: %v", ErrInject, path, err)
	}

	if data.SiteTitle == "" {
		data.SiteTitle = in.siteTitle
	}
	if data.Chooser == "" {
		data.Chooser = ChooserLink
	}

	out, status, err := in.nav.InjectNav(ctx, string(content), data)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInject, path, err)
	}

	switch status {
	case InjectAlreadyPresent:
		in.logger.Info("nav already present in " + path)
		return status, nil
	case InjectNoBody:
		in.logger.Warn("no <body> found in " + path + " — skipping injection")
		return status, nil
	}

	if err := fileutil.WriteFileAtomic(path, []byte(out), 0o644); err != nil {
		return 0, fmt.Errorf("%w: writing %s: %v", ErrInject, path, err)
	}
	in.logger.Info("injected fixed-nav+script into " + path)
	return status, nil
}

// InjectBundle injects the nav into bundles[i], linking its cyclic neighbours.
func (in *Injector) InjectBundle(ctx context.Context, bundles []Bundle, i int) (InjectStatus, error) {
	prev, next := Neighbors(i, len(bundles))
	b := bundles[i]
	return in.InjectFile(ctx, b.EntryPath(), pipeline.NavData{
		Title: b.ShortName,
		Prev:  bundles[prev].Link(),
		Next:  bundles[next].Link(),
	})
}

// InjectAll injects every bundle in order and returns one status per bundle.
// Skips are not errors; the first read, render or write failure stops the loop.
func (in *Injector) InjectAll(ctx context.Context, bundles []Bundle) ([]InjectStatus, error) {
	statuses := make([]InjectStatus, 0, len(bundles))
	for i := range bundles {
		if err := ctx.Err(); err != nil {
			return statuses, err
		}
		status, err := in.InjectBundle(ctx, bundles, i)
		if err != nil {
			return statuses, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
