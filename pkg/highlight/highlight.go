// Package highlight wraps search matches in a rendered content tree with
// marker elements and removes them again.
package highlight

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yaklabco/mdcat/pkg/dom"
	"github.com/yaklabco/mdcat/pkg/search"
)

// Marker classes.
const (
	MarkClass    = "search-highlight"
	CurrentClass = "current"
)

// skipTag names the element whose text is never searched (icon markup).
const skipTag = "svg"

// Apply wraps every literal occurrence of query in the text leaves under
// root with a <mark class="search-highlight"> element. The marker at
// ordinal current, counted in document order, also gets the "current"
// class. It returns the number of markers created.
func Apply(root *html.Node, query string, caseSensitive bool, current int) int {
	re := search.Compile(query, search.Options{CaseSensitive: caseSensitive})
	if re == nil {
		return 0
	}

	// Collect first: splitting text nodes while walking would revisit them.
	var leaves []*html.Node
	for _, n := range dom.TextNodes(root) {
		if !dom.InsideTag(n, skipTag) {
			leaves = append(leaves, n)
		}
	}

	count := 0
	for _, leaf := range leaves {
		matches := search.FindPattern(leaf.Data, re)
		if len(matches) == 0 {
			continue
		}

		parent := leaf.Parent
		text := leaf.Data
		last := 0
		for _, m := range matches {
			if m.Len() == 0 {
				continue
			}
			if m.Start > last {
				parent.InsertBefore(textNode(text[last:m.Start]), leaf)
			}
			parent.InsertBefore(marker(text[m.Start:m.End], count == current), leaf)
			count++
			last = m.End
		}
		if last < len(text) {
			parent.InsertBefore(textNode(text[last:]), leaf)
		}
		parent.RemoveChild(leaf)
	}

	return count
}

// Clear replaces every marker under root with its text and normalizes the
// affected parents, so the tree's text is identical to before Apply.
func Clear(root *html.Node) int {
	var marks []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if IsMarker(n) {
			marks = append(marks, n)
			return false
		}
		return true
	})

	parents := make(map[*html.Node]struct{}, len(marks))
	for _, mark := range marks {
		parent := mark.Parent
		if parent == nil {
			continue
		}
		parent.InsertBefore(textNode(dom.TextContent(mark)), mark)
		parent.RemoveChild(mark)
		parents[parent] = struct{}{}
	}
	for parent := range parents {
		dom.Normalize(parent)
	}
	return len(marks)
}

// IsMarker reports whether n is a marker element created by Apply.
func IsMarker(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Mark && dom.HasClass(n, MarkClass)
}

// Markers returns the marker elements under root in document order.
func Markers(root *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if IsMarker(n) {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// CurrentMarker returns the marker flagged current, or nil.
func CurrentMarker(root *html.Node) *html.Node {
	for _, m := range Markers(root) {
		if dom.HasClass(m, CurrentClass) {
			return m
		}
	}
	return nil
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func marker(s string, current bool) *html.Node {
	class := MarkClass
	if current {
		class += " " + CurrentClass
	}
	mark := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	mark.AppendChild(textNode(s))
	return mark
}
