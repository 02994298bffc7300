package nbsite

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alnah/go-nbsite/internal/pipeline"
)

// NotebookMeta is the title and description a notebook declares in its
// first mo.md cell.
type NotebookMeta struct {
	Title           string
	Description     string // markdown
	DescriptionHTML string // rendered fragment, trusted
}

var (
	moMDCall     = regexp.MustCompile(`\bmo\.md\(\s*([rRfFbBuU]{0,2})("""|'''|"|')`)
	h1Line       = regexp.MustCompile(`^#[ \t]+(.+?)[ \t#]*$`)
	pyEscapeRepl = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\'`, `'`, `\n`, "\n", `\t`, "\t")
	stripMarks   = strings.NewReplacer(pipeline.MarkStartPlaceholder, "", pipeline.MarkEndPlaceholder, "")
)

// ExtractMarkdown returns the string argument of the first mo.md call in a
// notebook source, or false if there is none.
func ExtractMarkdown(src string) (string, bool) {
	loc := moMDCall.FindStringSubmatchIndex(src)
	if loc == nil {
		return "", false
	}
	prefix := strings.ToLower(src[loc[2]:loc[3]])
	quote := src[loc[4]:loc[5]]
	body := src[loc[5]:]

	end := closingQuote(body, quote)
	if end < 0 {
		return "", false
	}
	text := body[:end]
	if !strings.Contains(prefix, "r") {
		text = pyEscapeRepl.Replace(text)
	}
	return text, true
}

// closingQuote finds the first unescaped occurrence of quote in s.
// Single-quoted strings end at a newline.
func closingQuote(s, quote string) int {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++
		case len(quote) == 1 && s[i] == '\n':
			return -1
		case strings.HasPrefix(s[i:], quote):
			return i
		}
	}
	return -1
}

// SplitTitle returns the text of the first level-1 ATX heading and the
// markdown that remains once that line is removed.
func SplitTitle(md string) (title, rest string) {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		m := h1Line.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		rest = strings.Join(append(lines[:i:i], lines[i+1:]...), "\n")
		return m[1], strings.TrimSpace(rest)
	}
	return "", strings.TrimSpace(md)
}

// MetaReader reads notebook metadata and renders descriptions to HTML.
type MetaReader struct {
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.FragmentConverter
}

// NewMetaReader creates a MetaReader backed by goldmark.
func NewMetaReader() *MetaReader {
	return &MetaReader{
		preprocessor: &pipeline.NotebookTextPreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(),
	}
}

// Read parses the notebook at path. A notebook without an mo.md cell gives
// an empty NotebookMeta and no error.
func (r *MetaReader) Read(ctx context.Context, path string) (NotebookMeta, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- discovered source file
	if err != nil {
		return NotebookMeta{}, fmt.Errorf("reading notebook: %w", err)
	}
	return r.Parse(ctx, string(src))
}

// Parse extracts metadata from notebook source text.
func (r *MetaReader) Parse(ctx context.Context, src string) (NotebookMeta, error) {
	md, ok := ExtractMarkdown(src)
	if !ok {
		return NotebookMeta{}, nil
	}

	md = r.preprocessor.PreprocessMarkdown(ctx, md)
	title, desc := SplitTitle(md)
	meta := NotebookMeta{
		Title:       stripMarks.Replace(title),
		Description: desc,
	}
	if desc == "" {
		return meta, nil
	}

	fragment, err := r.converter.ToFragment(ctx, desc)
	if err != nil {
		return meta, err
	}
	meta.DescriptionHTML = strings.TrimSpace(pipeline.ConvertMarkPlaceholders(fragment))
	return meta, nil
}
