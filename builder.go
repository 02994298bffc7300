package nbsite

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-nbsite/internal/assets"
	"github.com/alnah/go-nbsite/internal/pipeline"
)

// BuildRequest selects the notebooks to build and where to write them.
type BuildRequest struct {
	InputDir   string // default "."
	Pattern    string // default DefaultPattern
	OutputDir  string // default DefaultOutputDir
	SkipExport bool   // inject and write the chooser over existing exports
}

// BundleReport is the outcome of one bundle.
type BundleReport struct {
	Bundle       Bundle
	Title        string
	Inject       InjectStatus
	ExportTime   time.Duration
	Exported     bool
	MetaWarnings []string
}

// BuildReport summarizes a build.
type BuildReport struct {
	OutputDir   string
	ChooserPath string
	Bundles     []BundleReport
	Collisions  []Collision
	Duration    time.Duration
}

// Count returns the number of bundles with the given inject status.
func (r *BuildReport) Count(status InjectStatus) int {
	n := 0
	for _, b := range r.Bundles {
		if b.Inject == status {
			n++
		}
	}
	return n
}

// Builder runs the export, inject and chooser stages.
type Builder struct {
	cfg      builderConfig
	logger   *zap.Logger
	runner   CommandRunner
	loader   assets.AssetLoader
	exporter *Exporter
	injector *Injector
	chooser  *ChooserWriter
	meta     *MetaReader
}

// NewBuilder creates a Builder. Returns an error if asset loading or
// template parsing fails.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg: builderConfig{
			exportCommand: DefaultExportCommand,
			siteTitle:     DefaultSiteTitle,
			repoURL:       DefaultRepoURL,
			marker:        pipeline.DefaultMarker,
			stdout:        io.Discard,
			stderr:        io.Discard,
		},
		logger: zap.NewNop(),
		runner: &ExecRunner{},
		meta:   NewMetaReader(),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.loader = assets.NewEmbeddedLoader()
	if b.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(b.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		b.loader = resolver
	}

	if err := b.initStages(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Builder) initStages() error {
	navTmpl, err := b.loader.LoadTemplate(assets.NavTemplate)
	if err != nil {
		return fmt.Errorf("loading nav template: %w", err)
	}
	scriptTmpl, err := b.loader.LoadTemplate(assets.NavScriptTemplate)
	if err != nil {
		return fmt.Errorf("loading nav script template: %w", err)
	}
	renderer, err := pipeline.NewNavRenderer(navTmpl, scriptTmpl)
	if err != nil {
		return fmt.Errorf("initializing nav renderer: %w", err)
	}
	b.injector = NewInjector(pipeline.NewNavInjection(renderer, b.cfg.marker), b.cfg.siteTitle, b.logger)

	chooserTmpl, err := b.loader.LoadTemplate(assets.ChooserTemplate)
	if err != nil {
		return fmt.Errorf("loading chooser template: %w", err)
	}
	css, err := b.loader.LoadStyle(assets.ChooserStyle)
	if err != nil {
		return fmt.Errorf("loading chooser style: %w", err)
	}
	b.chooser, err = NewChooserWriter(chooserTmpl, css, b.cfg.siteTitle, b.cfg.repoURL)
	if err != nil {
		return fmt.Errorf("initializing chooser: %w", err)
	}

	b.exporter = &Exporter{
		Command: b.cfg.exportCommand,
		Runner:  b.runner,
		Stdout:  b.cfg.stdout,
		Stderr:  b.cfg.stderr,
		Logger:  b.logger,
	}
	return nil
}

// Exporter returns the configured exporter.
func (b *Builder) Exporter() *Exporter { return b.exporter }

// Build runs the pipeline once. The returned report is non-nil whenever
// discovery succeeded, including on a later failure, and lists what was
// done before the failure. Nothing is rolled back.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*BuildReport, error) {
	start := time.Now()
	req = withDefaults(req)

	bundles, err := Discover(req.InputDir, req.Pattern, req.OutputDir)
	if err != nil {
		return nil, err
	}

	report := &BuildReport{OutputDir: req.OutputDir, Bundles: make([]BundleReport, len(bundles))}
	for i, bd := range bundles {
		report.Bundles[i] = BundleReport{Bundle: bd, Title: bd.ShortName}
	}
	defer func() { report.Duration = time.Since(start) }()

	if err := b.checkCollisions(bundles, report); err != nil {
		return report, err
	}

	if !req.SkipExport {
		for i, bd := range bundles {
			t0 := time.Now()
			if err := b.exporter.ExportOne(ctx, bd); err != nil {
				return report, err
			}
			report.Bundles[i].Exported = true
			report.Bundles[i].ExportTime = time.Since(t0)
		}
	}

	statuses, err := b.injector.InjectAll(ctx, bundles)
	for i, s := range statuses {
		report.Bundles[i].Inject = s
	}
	if err != nil {
		return report, err
	}

	metas := b.readMeta(ctx, report)
	path, err := b.chooser.Write(ctx, req.OutputDir, CardsFor(bundles, metas))
	if err != nil {
		return report, err
	}
	report.ChooserPath = path
	b.logger.Info("wrote chooser at " + path)

	return report, nil
}

func withDefaults(req BuildRequest) BuildRequest {
	if req.InputDir == "" {
		req.InputDir = "."
	}
	if req.Pattern == "" {
		req.Pattern = DefaultPattern
	}
	if req.OutputDir == "" {
		req.OutputDir = DefaultOutputDir
	}
	return req
}

// checkCollisions reports bundles whose output directories overlap: an empty
// short name lands on the output root, and shared names overwrite each other.
func (b *Builder) checkCollisions(bundles []Bundle, report *BuildReport) error {
	for _, bd := range bundles {
		if bd.ShortName != "" {
			continue
		}
		msg := fmt.Sprintf("%s has an empty short name; its export shares %s with the chooser page",
			bd.Source, bd.OutputDir)
		if b.cfg.strictNames {
			return fmt.Errorf("%w: %s", ErrShortNameCollision, msg)
		}
		b.logger.Warn(msg)
	}

	report.Collisions = FindCollisions(bundles)
	for _, c := range report.Collisions {
		msg := fmt.Sprintf("short name %q shared by %s; later exports overwrite earlier ones",
			c.ShortName, strings.Join(c.Sources, ", "))
		if b.cfg.strictNames {
			return fmt.Errorf("%w: %s", ErrShortNameCollision, msg)
		}
		b.logger.Warn(msg)
	}
	return nil
}

// readMeta reads notebook metadata for the chooser. Failures only fall
// back to the short name.
func (b *Builder) readMeta(ctx context.Context, report *BuildReport) []NotebookMeta {
	metas := make([]NotebookMeta, len(report.Bundles))
	for i := range report.Bundles {
		br := &report.Bundles[i]
		meta, err := b.meta.Read(ctx, br.Bundle.Source)
		if err != nil {
			b.logger.Debug("notebook metadata unavailable",
				zap.String("source", br.Bundle.Source), zap.Error(err))
			br.MetaWarnings = append(br.MetaWarnings, err.Error())
			continue
		}
		if meta.Title != "" {
			br.Title = meta.Title
		}
		desc, err := pipeline.RebaseRelativeLinks(meta.DescriptionHTML,
			filepath.Dir(br.Bundle.Source), report.OutputDir)
		if err != nil {
			b.logger.Debug("keeping description links as written",
				zap.String("source", br.Bundle.Source), zap.Error(err))
		} else {
			meta.DescriptionHTML = desc
		}
		metas[i] = meta
	}
	return metas
}
