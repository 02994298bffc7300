package nbsite

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-nbsite/internal/assets"
)

func newTestChooser(t *testing.T, repoURL string) *ChooserWriter {
	t.Helper()

	loader := assets.NewEmbeddedLoader()
	tmpl, err := loader.LoadTemplate(assets.ChooserTemplate)
	if err != nil {
		t.Fatal(err)
	}
	css, err := loader.LoadStyle(assets.ChooserStyle)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewChooserWriter(tmpl, css, DefaultSiteTitle, repoURL)
	if err != nil {
		t.Fatalf("NewChooserWriter() error = %v", err)
	}
	return w
}

var cardHref = regexp.MustCompile(`<div class="card">.*?<a class="btn" href="([^"]*)">`)

func TestChooserWriter_ThreeCardsInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "p.c.py", "p.a.py", "p.b.py")
	bundles, err := Discover(dir, "p.*.py", filepath.Join(dir, "dist"))
	if err != nil {
		t.Fatal(err)
	}

	w := newTestChooser(t, DefaultRepoURL)
	path, err := w.Write(context.Background(), filepath.Join(dir, "dist"), CardsFor(bundles, nil))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, "dist", "index.html") {
		t.Errorf("Write() path = %q", path)
	}

	page, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var hrefs []string
	for _, m := range cardHref.FindAllStringSubmatch(string(page), -1) {
		hrefs = append(hrefs, m[1])
	}
	if diff := cmp.Diff([]string{"./a/", "./b/", "./c/"}, hrefs); diff != "" {
		t.Errorf("card links mismatch (-want +got):\n%s", diff)
	}
	if n := strings.Count(string(page), `<div class="card">`); n != 3 {
		t.Errorf("card count = %d, want 3", n)
	}
	if !strings.Contains(string(page), `href="`+DefaultRepoURL+`"`) {
		t.Error("heading link missing")
	}
}

func TestChooserWriter_Render(t *testing.T) {
	t.Parallel()

	bundles := []Bundle{{ShortName: "vox"}, {ShortName: "mesh"}}
	metas := []NotebookMeta{{Title: "Voxel <Rendering>", DescriptionHTML: "<p>Load a <em>volume</em>.</p>"}}

	t.Run("metadata and fallbacks", func(t *testing.T) {
		t.Parallel()

		page, err := newTestChooser(t, "").Render(CardsFor(bundles, metas))
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		s := string(page)

		for _, want := range []string{
			"<h2>Voxel &lt;Rendering&gt;</h2>",
			`<div class="desc"><p>Load a <em>volume</em>.</p></div>`,
			"<h2>mesh</h2>",
			`<a class="btn" href="./mesh/">Open mesh</a>`,
			"<h1>niivue examples</h1>",
		} {
			if !strings.Contains(s, want) {
				t.Errorf("page missing %q", want)
			}
		}
		if strings.Count(s, `class="desc"`) != 1 {
			t.Error("description block rendered for card without description")
		}
	})

	t.Run("css is not escaped away", func(t *testing.T) {
		t.Parallel()

		page, err := newTestChooser(t, "").Render(nil)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(page), ".card {") {
			t.Error("stylesheet not embedded verbatim")
		}
	})
}
