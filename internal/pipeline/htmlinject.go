package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrReloadRender indicates the reload snippet template failed to execute.
var ErrReloadRender = errors.New("reload template rendering failed")

// SafeCSS escapes sequences that could close a <style> block and marks the
// result as trusted for html/template.
func SafeCSS(css string) template.CSS {
	return template.CSS(sanitizeCSS(css)) // #nosec G203 -- </ is escaped
}

// sanitizeCSS escapes </ so the stylesheet cannot end the <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// InsertBeforeBodyClose inserts snippet before the last </body>.
// Without one, snippet is appended.
func InsertBeforeBodyClose(doc, snippet string) string {
	if idx := strings.LastIndex(strings.ToLower(doc), "</body>"); idx != -1 {
		return doc[:idx] + snippet + doc[idx:]
	}
	return doc + snippet
}

// ReloadData configures the live reload snippet.
type ReloadData struct {
	Path string // websocket path, e.g. /_nbsite/reload
}

// ReloadInjector defines the contract for reload snippet injection.
type ReloadInjector interface {
	InjectReload(ctx context.Context, doc string) (string, error)
}

// ReloadInjection renders the reload snippet once and injects it before </body>.
type ReloadInjection struct {
	snippet string
}

// NewReloadInjection renders tmplContent with data.
func NewReloadInjection(tmplContent string, data ReloadData) (*ReloadInjection, error) {
	tmpl, err := template.New("reload").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing reload template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReloadRender, err)
	}
	return &ReloadInjection{snippet: buf.String()}, nil
}

// Snippet returns the rendered script element.
func (r *ReloadInjection) Snippet() string { return r.snippet }

// InjectReload inserts the snippet before </body>.
func (r *ReloadInjection) InjectReload(ctx context.Context, doc string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return InsertBeforeBodyClose(doc, r.snippet), nil
}

var _ ReloadInjector = (*ReloadInjection)(nil)
