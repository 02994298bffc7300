package nbsite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		want   string
		wantOK bool
	}{
		{"triple double", `mo.md("""# T""")`, "# T", true},
		{"triple single", `mo.md('''# T''')`, "# T", true},
		{"raw prefix keeps escapes", `mo.md(r"""a\nb""")`, `a\nb`, true},
		{"escapes decoded", `mo.md("a \"q\"")`, `a "q"`, true},
		{"f string", `mo.md(f"""# {x}""")`, "# {x}", true},
		{"first call wins", "mo.md(\"one\")\nmo.md(\"two\")", "one", true},
		{"whitespace before string", "mo.md(\n    \"\"\"x\"\"\"\n)", "x", true},
		{"unterminated", `mo.md("""never closed`, "", false},
		{"single quote ends at newline", "mo.md(\"oops\n\")", "", false},
		{"no call", "import marimo", "", false},
		{"other md call", `xmo.md("x")`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractMarkdown(tt.src)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractMarkdown() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSplitTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		md        string
		wantTitle string
		wantRest  string
	}{
		{"heading first", "# Title\n\nBody text.", "Title", "Body text."},
		{"closing hashes", "# Title ##\nBody", "Title", "Body"},
		{"h2 is not a title", "## Sub\ntext", "", "## Sub\ntext"},
		{"heading later", "intro\n# Title\nmore", "Title", "intro\nmore"},
		{"no heading", "just text", "", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			title, rest := SplitTitle(tt.md)
			if title != tt.wantTitle || rest != tt.wantRest {
				t.Errorf("SplitTitle() = %q, %q; want %q, %q", title, rest, tt.wantTitle, tt.wantRest)
			}
		})
	}
}

func TestMetaReader_Read(t *testing.T) {
	t.Parallel()

	r := NewMetaReader()

	t.Run("notebook layout", func(t *testing.T) {
		t.Parallel()

		got, err := r.Read(context.Background(), filepath.Join("testdata", "marimo.vox.py"))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		want := NotebookMeta{
			Title:           "Voxel statistics",
			Description:     "This Python script illustrates the ability to load a statistical map on top of an anatomical scan.",
			DescriptionHTML: "<p>This Python script illustrates the ability to load a statistical map on top of an anatomical scan.</p>",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Read() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := r.Read(context.Background(), filepath.Join("testdata", "nope.py")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("highlight and link", func(t *testing.T) {
		t.Parallel()

		src := "mo.md(\"\"\"\n    # Mesh ==demo==\n\n    See [docs](https://niivue.com) for ==more==.\n    \"\"\")"
		got, err := r.Parse(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "Mesh demo" {
			t.Errorf("Title = %q", got.Title)
		}
		if !strings.Contains(got.DescriptionHTML, "<mark>more</mark>") ||
			!strings.Contains(got.DescriptionHTML, `<a href="https://niivue.com">docs</a>`) {
			t.Errorf("DescriptionHTML = %q", got.DescriptionHTML)
		}
	})

	t.Run("no markdown cell", func(t *testing.T) {
		t.Parallel()

		got, err := r.Parse(context.Background(), "import marimo\n")
		if err != nil || got != (NotebookMeta{}) {
			t.Errorf("Parse() = %+v, %v", got, err)
		}
	})
}
