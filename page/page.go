// Package page parses documentation pages and extracts the declarations
// they describe. Extraction is best-effort over the layout conventions of
// C++/Qt-style API documentation; pages that deviate yield partial
// declarations, never errors.
package page

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/docbind/docbind/errors"
)

// Link is one outbound anchor: its flattened text and target.
type Link struct {
	Text string
	Href string
}

// Page is a parsed documentation page. The node tree is retained so
// dependency tracking can re-scan the original document for links.
type Page struct {
	URI   string
	Title string
	Links []Link

	root *html.Node
}

// ParsePage reads an HTML document, collecting its title and every
// outbound link in document order.
func ParsePage(uri string, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrFetchFailure, "parsing document %s: %v", uri, err)
	}

	p := &Page{URI: uri, root: root}
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.H1:
			if p.Title == "" {
				p.Title = flattenText(n)
			}
		case atom.A:
			href := attrValue(n, "href")
			text := flattenText(n)
			if href == "" || text == "" {
				return
			}
			p.Links = append(p.Links, Link{Text: text, Href: href})
		}
	})
	if p.Title == "" {
		walk(root, func(n *html.Node) {
			if p.Title == "" && n.Type == html.ElementNode && n.DataAtom == atom.Title {
				p.Title = flattenText(n)
			}
		})
	}
	return p, nil
}

// walk visits every node in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// flattenText concatenates the text nodes under n with whitespace
// collapsed.
func flattenText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
