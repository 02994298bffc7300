package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMarker is written after the nav bar and makes injection idempotent.
const DefaultMarker = "<!-- MARIMO_NAV_INJECTED -->"

// NavMinHeight is the smallest offset in pixels the nav script applies.
const NavMinHeight = 48

// ErrNavRender indicates the nav or script template failed to execute.
var ErrNavRender = errors.New("nav template rendering failed")

// InjectStatus reports what happened to one entry document.
type InjectStatus int

const (
	// InjectPending means injection has not run for the document.
	InjectPending InjectStatus = iota
	// InjectApplied means the nav and script were inserted.
	InjectApplied
	// InjectAlreadyPresent means the marker was found and nothing changed.
	InjectAlreadyPresent
	// InjectNoBody means no <body> start tag was found; nothing changed.
	InjectNoBody
	// InjectMissing means the entry file does not exist.
	InjectMissing
)

func (s InjectStatus) String() string {
	switch s {
	case InjectPending:
		return "pending"
	case InjectApplied:
		return "applied"
	case InjectAlreadyPresent:
		return "already-present"
	case InjectNoBody:
		return "no-body"
	case InjectMissing:
		return "missing"
	default:
		return fmt.Sprintf("InjectStatus(%d)", int(s))
	}
}

// MarshalText lets reports print statuses by name.
func (s InjectStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NavData holds the values rendered into the nav bar.
type NavData struct {
	SiteTitle string
	Title     string
	Prev      string
	Chooser   string
	Next      string
}

// scriptData feeds the nav script template.
type scriptData struct {
	MinHeight int
	NavHTML   string
}

// NavRenderer renders the nav bar markup and the script that keeps it alive.
type NavRenderer struct {
	nav    *template.Template
	script *template.Template
}

// NewNavRenderer parses the nav and nav script templates.
func NewNavRenderer(navTmpl, scriptTmpl string) (*NavRenderer, error) {
	nav, err := template.New("nav").Parse(navTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing nav template: %w", err)
	}
	script, err := template.New("navscript").Parse(scriptTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing nav script template: %w", err)
	}
	return &NavRenderer{nav: nav, script: script}, nil
}

// Render returns the nav markup and the script embedding it.
func (r *NavRenderer) Render(data NavData) (navHTML, script string, err error) {
	var buf bytes.Buffer
	if err := r.nav.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNavRender, err)
	}
	navHTML = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := r.script.Execute(&buf, scriptData{MinHeight: NavMinHeight, NavHTML: navHTML}); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNavRender, err)
	}
	return navHTML, strings.TrimSpace(buf.String()), nil
}

// TagOffsets holds byte offsets of the first <head> and <body> start tags.
// Start is the index of '<', End the index just past '>'. Missing tags are -1.
type TagOffsets struct {
	HeadStart, HeadEnd int
	BodyStart, BodyEnd int
}

// HasHead reports whether a <head> start tag was found.
func (o TagOffsets) HasHead() bool { return o.HeadStart >= 0 }

// HasBody reports whether a <body> start tag was found.
func (o TagOffsets) HasBody() bool { return o.BodyStart >= 0 }

// LocateTags tokenizes doc and returns the offsets of the first <head> and
// <body> start tags. Tags inside comments, scripts and attribute values are
// not matched. Scanning stops at the body tag.
func LocateTags(doc string) TagOffsets {
	offsets := TagOffsets{HeadStart: -1, HeadEnd: -1, BodyStart: -1, BodyEnd: -1}

	z := html.NewTokenizer(strings.NewReader(doc))
	pos := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return offsets
		}

		n := len(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head:
				if offsets.HeadStart < 0 {
					offsets.HeadStart, offsets.HeadEnd = pos, pos+n
				}
			case atom.Body:
				offsets.BodyStart, offsets.BodyEnd = pos, pos+n
				return offsets
			}
		}
		pos += n
	}
}

// NavInjector defines the contract for nav injection into an entry document.
type NavInjector interface {
	InjectNav(ctx context.Context, doc string, data NavData) (string, InjectStatus, error)
}

// NavInjection inserts the nav bar after <body> and its script after <head>.
type NavInjection struct {
	renderer *NavRenderer
	marker   string
}

// NewNavInjection creates a NavInjection. An empty marker means DefaultMarker.
func NewNavInjection(renderer *NavRenderer, marker string) *NavInjection {
	if marker == "" {
		marker = DefaultMarker
	}
	return &NavInjection{renderer: renderer, marker: marker}
}

// Marker returns the idempotency marker.
func (n *NavInjection) Marker() string { return n.marker }

// InjectNav returns doc with the nav inserted. When the marker is already
// present or no <body> tag exists, doc is returned unchanged with the
// matching status.
func (n *NavInjection) InjectNav(ctx context.Context, doc string, data NavData) (string, InjectStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	if strings.Contains(doc, n.marker) {
		return doc, InjectAlreadyPresent, nil
	}

	offsets := LocateTags(doc)
	if !offsets.HasBody() {
		return doc, InjectNoBody, nil
	}

	navHTML, script, err := n.renderer.Render(data)
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	b.Grow(len(doc) + len(navHTML)*2 + len(script) + len(n.marker) + 8)

	if offsets.HasHead() {
		b.WriteString(doc[:offsets.HeadEnd])
		b.WriteString("\n" + script + "\n")
		b.WriteString(doc[offsets.HeadEnd:offsets.BodyEnd])
	} else {
		b.WriteString(doc[:offsets.BodyStart])
		b.WriteString(script + "\n")
		b.WriteString(doc[offsets.BodyStart:offsets.BodyEnd])
	}
	b.WriteString("\n" + navHTML + "\n" + n.marker + "\n")
	b.WriteString(doc[offsets.BodyEnd:])

	return b.String(), InjectApplied, nil
}

var _ NavInjector = (*NavInjection)(nil)
