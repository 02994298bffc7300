// Package nbsite builds a static demo site from a folder of marimo notebooks.
//
// # Quick Start
//
//	b, err := nbsite.NewBuilder(nbsite.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := b.Build(ctx, nbsite.BuildRequest{
//	    InputDir:  ".",
//	    Pattern:   "marimo.*.py",
//	    OutputDir: "dist",
//	})
//
// # Build Pipeline
//
// A build runs three stages once, in order, with no retries and no rollback:
//
//  1. Export: each notebook is exported by an external tool
//     (uv run marimo -y export html-wasm <src> -o <outdir>) into a
//     directory named after its short name. A failing export stops the build.
//  2. Inject: a fixed navigation bar with cyclic prev/next links is inserted
//     into every bundle's index.html. A marker comment makes this idempotent.
//     Entry files without a <body> tag are skipped.
//  3. Chooser: <out>/index.html gets one card per bundle.
//
// # Short Names
//
// The short name is the file name without its extension, minus everything up
// to and including the first dot: marimo.vox.py becomes vox and
// marimo.a.b.py becomes a.b.
//
// # Verification
//
// Verifier opens each built page in headless Chrome and checks the nav bar
// does not cover page content.
package nbsite
