package pipeline

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRebaseRelativeLinks(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	notebooks := filepath.Join(base, "notebooks")
	dist := filepath.Join(base, "dist")

	tests := []struct {
		name      string
		fragment  string
		from      string
		to        string
		want      string
		unchanged bool
	}{
		{
			name:     "link into sibling dir",
			fragment: `<p>Uses <a href="data/brain.nii.gz">this volume</a>.</p>`,
			from:     notebooks,
			to:       dist,
			want:     `href="../notebooks/data/brain.nii.gz"`,
		},
		{
			name:     "image",
			fragment: `<p><img src="img/logo.png" alt="logo"/></p>`,
			from:     notebooks,
			to:       dist,
			want:     `src="../notebooks/img/logo.png"`,
		},
		{
			name:     "query and fragment kept",
			fragment: `<a href="docs/x.html?v=1#top">docs</a>`,
			from:     notebooks,
			to:       dist,
			want:     `href="../notebooks/docs/x.html?v=1#top"`,
		},
		{
			name:     "trailing slash kept",
			fragment: `<a href="more/">more</a>`,
			from:     notebooks,
			to:       dist,
			want:     `href="../notebooks/more/"`,
		},
		{
			name:     "output below sources",
			fragment: `<a href="data/x.csv">x</a>`,
			from:     base,
			to:       dist,
			want:     `href="../data/x.csv"`,
		},
		{
			name:      "absolute URL",
			fragment:  `<a href="https://niivue.com/">niivue</a>`,
			from:      notebooks,
			to:        dist,
			unchanged: true,
		},
		{
			name:      "mailto",
			fragment:  `<a href="mailto:a@b.c">mail</a>`,
			from:      notebooks,
			to:        dist,
			unchanged: true,
		},
		{
			name:      "anchor and root path",
			fragment:  `<a href="#usage">usage</a> <a href="/site/">site</a>`,
			from:      notebooks,
			to:        dist,
			unchanged: true,
		},
		{
			name:      "same directory",
			fragment:  `<a href="data/x.csv">x</a>`,
			from:      dist,
			to:        dist,
			unchanged: true,
		},
		{
			name:      "no links",
			fragment:  `<p>plain <em>text</em><br /></p>`,
			from:      notebooks,
			to:        dist,
			unchanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RebaseRelativeLinks(tt.fragment, tt.from, tt.to)
			if err != nil {
				t.Fatalf("RebaseRelativeLinks() error = %v", err)
			}
			if tt.unchanged {
				if got != tt.fragment {
					t.Errorf("RebaseRelativeLinks() = %q, want input unchanged", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RebaseRelativeLinks() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestRebaseRelativeLinks_EmptyDirs(t *testing.T) {
	t.Parallel()

	in := `<a href="x.html">x</a>`
	for _, dirs := range [][2]string{{"", "dist"}, {"nb", ""}} {
		got, err := RebaseRelativeLinks(in, dirs[0], dirs[1])
		if err != nil || got != in {
			t.Errorf("RebaseRelativeLinks(%q, %q) = %q, %v; want input unchanged", dirs[0], dirs[1], got, err)
		}
	}
}
