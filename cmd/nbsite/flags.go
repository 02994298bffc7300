package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-nbsite/internal/config"
)

// ErrUsage wraps flag parsing errors.
var ErrUsage = errors.New("invalid usage")

// errHelp is returned when -h/--help was given; usage is already printed.
var errHelp = flag.ErrHelp

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags select sources and output; shared by build, serve, verify and publish.
type siteFlags struct {
	input  string
	output string
}

// buildFlags holds flags for the build command.
type buildFlags struct {
	common      commonFlags
	site        siteFlags
	pattern     string
	title       string
	assetPath   string
	noExport    bool
	strictNames bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	build   buildFlags
	addr    string
	noBuild bool
	noWatch bool
}

// verifyFlags holds flags for the verify command.
type verifyFlags struct {
	common  commonFlags
	site    siteFlags
	pattern string
	timeout time.Duration
	workers int
	json    bool
}

// publishFlags holds flags for the publish command.
type publishFlags struct {
	common   commonFlags
	site     siteFlags
	bucket   string
	prefix   string
	endpoint string
	dryRun   bool
	json     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVarP(&f.input, "input", "i", "", "directory containing notebooks")
	fs.StringVarP(&f.output, "output", "o", "", "site output directory")
}

func addBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVar(&f.pattern, "pattern", "", "notebook glob (default marimo.*.py)")
	fs.StringVar(&f.title, "title", "", "site title shown in the nav and chooser")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded templates")
	fs.BoolVar(&f.noExport, "no-export", false, "skip export, inject into existing output")
	fs.BoolVar(&f.strictNames, "strict-names", false, "fail when two notebooks share a short name")
}

func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse runs fs.Parse and maps errors to ErrUsage. Commands take no
// positional arguments.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp // pflag already printed usage
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	f := &buildFlags{}
	fs := newFlagSet("build", stderr, printBuildUsage)
	addBuildFlags(fs, f)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	addBuildFlags(fs, &f.build)
	fs.StringVar(&f.addr, "addr", "", "listen address (default 127.0.0.1:8000)")
	fs.BoolVar(&f.noBuild, "no-build", false, "serve the existing output without building")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not rebuild on source changes")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseVerifyFlags(args []string, stderr io.Writer) (*verifyFlags, error) {
	f := &verifyFlags{}
	fs := newFlagSet("verify", stderr, printVerifyUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVar(&f.pattern, "pattern", "", "notebook glob (default marimo.*.py)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-page timeout (e.g. 30s)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parsePublishFlags(args []string, stderr io.Writer) (*publishFlags, error) {
	f := &publishFlags{}
	fs := newFlagSet("publish", stderr, printPublishUsage)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVar(&f.bucket, "bucket", "", "target bucket")
	fs.StringVar(&f.prefix, "prefix", "", "key prefix inside the bucket")
	fs.StringVar(&f.endpoint, "endpoint", "", "S3 endpoint host[:port]")
	fs.BoolVar(&f.dryRun, "dry-run", false, "list keys without uploading")
	fs.BoolVar(&f.json, "json", false, "print the upload report as JSON")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// mergeSiteFlags applies flags over cfg (flags win).
func mergeSiteFlags(f siteFlags, pattern string, cfg *config.Config) {
	setString(&cfg.Input.Dir, f.input)
	setString(&cfg.Output.Dir, f.output)
	setString(&cfg.Input.Pattern, pattern)
}

func mergeBuildFlags(f *buildFlags, cfg *config.Config) {
	mergeSiteFlags(f.site, f.pattern, cfg)
	setString(&cfg.Site.Title, f.title)
	setString(&cfg.Assets.BasePath, f.assetPath)
	if f.strictNames {
		cfg.Export.StrictNames = true
	}
}
