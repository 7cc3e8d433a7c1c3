// Package page models the page under observation: a hostname plus a parsed
// HTML document that selectors can be matched against. The document is the
// stand-in for a live DOM; the watcher re-parses it whenever the backing
// snapshot file changes.
package page

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// Attribute is one attribute on an element.
type Attribute struct {
	Key string
	Val string
}

// element is the flattened form of one element node.
type element struct {
	tag   string
	attrs []Attribute
}

// Document is an immutable, queryable snapshot of a parsed HTML tree.
type Document struct {
	elements []element
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc := &Document{}
	doc.collect(root)
	return doc, nil
}

// ParseFile reads and parses an HTML document from disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page snapshot: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// collect flattens the element nodes of the tree. Selector matching only
// needs tags and attributes, not structure, so the traversal is one pass.
func (d *Document) collect(n *html.Node) {
	if n.Type == html.ElementNode {
		attrs := make([]Attribute, 0, len(n.Attr))
		for _, a := range n.Attr {
			attrs = append(attrs, Attribute{Key: a.Key, Val: a.Val})
		}
		d.elements = append(d.elements, element{tag: n.Data, attrs: attrs})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collect(c)
	}
}

// Match reports whether any element in the document satisfies the selector.
func (d *Document) Match(sel Selector) bool {
	for _, el := range d.elements {
		if sel.matchesElement(el.tag, el.attrs) {
			return true
		}
	}
	return false
}

// MatchAll reports whether every selector matches at least one element.
// An empty selector list matches.
func (d *Document) MatchAll(sels ...Selector) bool {
	for _, sel := range sels {
		if !d.Match(sel) {
			return false
		}
	}
	return true
}

// ElementCount returns the number of element nodes in the document.
func (d *Document) ElementCount() int {
	return len(d.elements)
}

// Snapshot pairs the page hostname with its parsed document. This is the
// complete input the scanner sees.
type Snapshot struct {
	Hostname string
	Doc      *Document
}

// NewSnapshot builds a Snapshot from a raw URL (or bare hostname) and a
// parsed document. The hostname is lower-cased; the URL is never fetched.
func NewSnapshot(rawURL string, doc *Document) Snapshot {
	return Snapshot{
		Hostname: Hostname(rawURL),
		Doc:      doc,
	}
}

// Hostname extracts the lower-cased hostname from a URL string. A bare
// hostname ("claude.ai") is returned as-is; an unparseable URL yields "".
func Hostname(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
