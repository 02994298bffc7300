package nbsite

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Default discovery and layout values.
const (
	DefaultPattern   = "marimo.*.py"
	DefaultOutputDir = "dist"
	EntryFile        = "index.html"
	ChooserLink      = "../"
)

// Bundle is one notebook and the directory its export is written to.
type Bundle struct {
	Source    string
	ShortName string
	OutputDir string
}

// EntryPath returns the path of the bundle's entry HTML file.
func (b Bundle) EntryPath() string {
	return filepath.Join(b.OutputDir, EntryFile)
}

// Link returns the bundle link relative to a sibling bundle directory.
func (b Bundle) Link() string {
	return "../" + b.ShortName + "/"
}

// ChooserHref returns the bundle link relative to the output root.
func (b Bundle) ChooserHref() string {
	return "./" + b.ShortName + "/"
}

// ShortName derives the bundle name from a source path: the base name
// without its final extension, after the first dot.
func ShortName(path string) string {
	stem := filepath.Base(path)
	if ext := filepath.Ext(stem); ext != "" && ext != stem {
		stem = strings.TrimSuffix(stem, ext)
	}
	if _, after, ok := strings.Cut(stem, "."); ok {
		return after
	}
	return stem
}

// Neighbors returns the indices before and after i in a cyclic sequence
// of length n. It panics if n < 1.
func Neighbors(i, n int) (prev, next int) {
	if n < 1 {
		panic("nbsite: Neighbors requires n >= 1")
	}
	prev = ((i-1)%n + n) % n
	next = (i + 1) % n
	return prev, next
}

// Discover globs pattern in dir and returns bundles sorted by source path.
// Output directories are outDir/<short name>.
func Discover(dir, pattern, outDir string) ([]Bundle, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoSources, pattern, dir)
	}
	sort.Strings(matches)

	bundles := make([]Bundle, len(matches))
	for i, src := range matches {
		name := ShortName(src)
		bundles[i] = Bundle{
			Source:    src,
			ShortName: name,
			OutputDir: filepath.Join(outDir, name),
		}
	}
	return bundles, nil
}

// Collision lists sources that share one short name.
type Collision struct {
	ShortName string
	Sources   []string
}

// FindCollisions returns short names used by more than one bundle, in
// order of first appearance.
func FindCollisions(bundles []Bundle) []Collision {
	seen := make(map[string]int)
	var out []Collision
	for _, b := range bundles {
		idx, ok := seen[b.ShortName]
		if !ok {
			seen[b.ShortName] = len(out)
			out = append(out, Collision{ShortName: b.ShortName, Sources: []string{b.Source}})
			continue
		}
		out[idx].Sources = append(out[idx].Sources, b.Source)
	}

	collisions := out[:0]
	for _, c := range out {
		if len(c.Sources) > 1 {
			collisions = append(collisions, c)
		}
	}
	return collisions
}
