package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RebaseRelativeLinks rewrites relative a[href] and img[src] values in an
// HTML fragment written next to fromDir so they resolve from toDir.
// Notebook descriptions link relative to the notebook source, while the
// chooser page lives in the output directory.
//
// URLs with a scheme or host, anchors, query-only references and absolute
// paths are left alone. The fragment is returned unchanged when nothing
// needed rewriting.
func RebaseRelativeLinks(fragment, fromDir, toDir string) (string, error) {
	if fragment == "" || fromDir == "" || toDir == "" {
		return fragment, nil
	}
	absFrom, err := filepath.Abs(fromDir)
	if err != nil {
		return "", err
	}
	absTo, err := filepath.Abs(toDir)
	if err != nil {
		return "", err
	}
	if absFrom == absTo {
		return fragment, nil
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		if rebaseNode(n, absFrom, absTo) {
			changed = true
		}
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rebaseNode(n *html.Node, from, to string) bool {
	changed := false
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.A:
			changed = rebaseAttr(n, "href", from, to)
		case atom.Img:
			changed = rebaseAttr(n, "src", from, to)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rebaseNode(c, from, to) {
			changed = true
		}
	}
	return changed
}

func rebaseAttr(n *html.Node, key, from, to string) bool {
	for i, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		rebased, ok := rebaseRef(attr.Val, from, to)
		if !ok {
			return false
		}
		n.Attr[i].Val = rebased
		return true
	}
	return false
}

// rebaseRef returns ref relative to to, keeping query and fragment.
func rebaseRef(ref, from, to string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "?") ||
		strings.HasPrefix(ref, "/") || filepath.IsAbs(ref) {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	target := filepath.Join(from, filepath.FromSlash(u.Path))
	rel, err := filepath.Rel(to, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasSuffix(u.Path, "/") && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}

	out := url.URL{Path: rel, RawQuery: u.RawQuery, Fragment: u.Fragment}
	return out.String(), true
}
