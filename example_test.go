package nbsite_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-nbsite"
)

// stubRunner stands in for the export tool and writes a minimal page.
type stubRunner struct{}

func (stubRunner) Run(_ context.Context, argv []string, _, _ io.Writer) error {
	out := argv[len(argv)-1]
	page := "<html><head></head><body><div id=\"root\"></div></body></html>"
	return os.WriteFile(filepath.Join(out, "index.html"), []byte(page), 0o600)
}

// Example builds a site from two notebooks with a stubbed export tool.
func Example() {
	dir, err := os.MkdirTemp("", "nbsite-example-*")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	for _, name := range []string{"marimo.vox.py", "marimo.mesh.py"} {
		_ = os.WriteFile(filepath.Join(dir, name), []byte("import marimo\n"), 0o600)
	}

	b, err := nbsite.NewBuilder(nbsite.WithRunner(stubRunner{}))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	report, err := b.Build(context.Background(), nbsite.BuildRequest{
		InputDir:  dir,
		OutputDir: filepath.Join(dir, "dist"),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, br := range report.Bundles {
		fmt.Println(br.Bundle.ShortName, br.Inject)
	}
	// Output:
	// mesh applied
	// vox applied
}

// ExampleShortName shows how notebook file names map to bundle names.
func ExampleShortName() {
	fmt.Println(nbsite.ShortName("marimo.vox.py"))
	fmt.Println(nbsite.ShortName("marimo.a.b.py"))
	fmt.Println(nbsite.ShortName("demo.py"))
	// Output:
	// vox
	// a.b
	// demo
}

// ExampleNeighbors shows the cyclic prev/next indices.
func ExampleNeighbors() {
	for i := range 3 {
		prev, next := nbsite.Neighbors(i, 3)
		fmt.Println(i, prev, next)
	}
	// Output:
	// 0 2 1
	// 1 0 2
	// 2 1 0
}
