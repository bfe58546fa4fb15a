// Package dom is the content tree the preview mutates: a parsed HTML
// fragment under a single root element, with the node queries the
// highlight annotator and view controller need.
package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LineAttr is the attribute carrying a block's source line.
const LineAttr = "data-source-line"

// Parse parses markup as the children of a new <div> root.
func Parse(markup string) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("parse content tree: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// Render serializes the children of root.
func Render(root *html.Node) string {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		//nolint:errcheck // strings.Builder never fails
		html.Render(&b, c)
	}
	return b.String()
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// TextNodes returns the text leaves under root in document order.
func TextNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TextContent concatenates the text under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// InsideTag reports whether n has an ancestor element named tag.
func InsideTag(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

// Normalize merges adjacent text nodes and removes empty ones under n.
func Normalize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.TextNode && c.Data == "":
			n.RemoveChild(c)
		case c.Type == html.TextNode:
			for next != nil && next.Type == html.TextNode {
				c.Data += next.Data
				after := next.NextSibling
				n.RemoveChild(next)
				next = after
			}
		default:
			Normalize(c)
		}
		c = next
	}
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n's class attribute lists class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// SourceLine returns the source line attribute of an element.
func SourceLine(n *html.Node) (int, bool) {
	if n.Type != html.ElementNode {
		return 0, false
	}
	v, ok := Attr(n, LineAttr)
	if !ok {
		return 0, false
	}
	line, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return line, true
}

// Block is an element carrying a source line.
type Block struct {
	Node *html.Node
	Line int
}

// Blocks returns every line-tagged element under root in document order.
func Blocks(root *html.Node) []Block {
	var out []Block
	Walk(root, func(n *html.Node) bool {
		if line, ok := SourceLine(n); ok {
			out = append(out, Block{Node: n, Line: line})
		}
		return true
	})
	return out
}

// Ancestor returns the nearest ancestor-or-self of n for which match is true.
func Ancestor(n *html.Node, match func(*html.Node) bool) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if match(p) {
			return p
		}
	}
	return nil
}
