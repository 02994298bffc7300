package nbsite

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/pipeline"
)

// Default chooser page values.
const (
	DefaultSiteTitle = "niivue examples"
	DefaultRepoURL   = "https://github.com/neurolabusc/ipyniivue-marimo-test"
)

// ChooserCard is one entry of the chooser page.
type ChooserCard struct {
	Name        string
	Title       string
	Description template.HTML
	Href        string
}

type chooserPage struct {
	SiteTitle string
	RepoURL   string
	CSS       template.CSS
	Cards     []ChooserCard
}

// ChooserWriter renders the top-level index page.
type ChooserWriter struct {
	tmpl      *template.Template
	css       string
	siteTitle string
	repoURL   string
}

// NewChooserWriter parses the chooser template.
func NewChooserWriter(tmplContent, css, siteTitle, repoURL string) (*ChooserWriter, error) {
	tmpl, err := template.New("chooser").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing chooser template: %w", err)
	}
	return &ChooserWriter{tmpl: tmpl, css: css, siteTitle: siteTitle, repoURL: repoURL}, nil
}

// CardsFor builds one card per bundle in order. metas may be shorter than
// bundles or nil; missing titles fall back to the short name.
func CardsFor(bundles []Bundle, metas []NotebookMeta) []ChooserCard {
	cards := make([]ChooserCard, len(bundles))
	for i, b := range bundles {
		card := ChooserCard{Name: b.ShortName, Title: b.ShortName, Href: b.ChooserHref()}
		if i < len(metas) {
			if metas[i].Title != "" {
				card.Title = metas[i].Title
			}
			card.Description = template.HTML(metas[i].DescriptionHTML) // #nosec G203 -- goldmark output without raw HTML
		}
		cards[i] = card
	}
	return cards
}

// Render returns the chooser page HTML.
func (w *ChooserWriter) Render(cards []ChooserCard) ([]byte, error) {
	var buf bytes.Buffer
	err := w.tmpl.Execute(&buf, chooserPage{
		SiteTitle: w.siteTitle,
		RepoURL:   w.repoURL,
		CSS:       pipeline.SafeCSS(w.css),
		Cards:     cards,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChooserWrite, err)
	}
	return buf.Bytes(), nil
}

// Write renders the page to outDir/index.html and returns its path.
func (w *ChooserWriter) Write(ctx context.Context, outDir string, cards []ChooserCard) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := w.Render(cards)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %v", ErrChooserWrite, err)
	}
	path := filepath.Join(outDir, EntryFile)
	if err := fileutil.WriteFileAtomic(path, page, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrChooserWrite, err)
	}
	return path, nil
}
