// Package linemap attributes block tokens to the source lines they begin on.
//
// Parsers rarely keep exact offsets for every block, so lines are re-derived
// by scanning the body for each token's raw text in document order.
package linemap

import (
	"strings"

	"github.com/yaklabco/mdcat/pkg/mdast"
)

// Assign sets Line on each token in the stream. The scan starts at the
// beginning of body, which itself starts on startLine.
//
// A token whose raw text cannot be found at or after the scan cursor is
// given the current line and the cursor does not move. The number of such
// tokens is returned.
func Assign(tokens []*mdast.Token, body string, startLine int) int {
	pos := 0
	line := startLine
	missed := 0

	for _, tok := range tokens {
		idx := strings.Index(body[pos:], tok.Raw)
		if idx < 0 {
			tok.Line = line
			missed++
			continue
		}

		start := pos + idx
		line += strings.Count(body[pos:start], "\n")
		tok.Line = line

		end := start + len(tok.Raw)
		line += strings.Count(tok.Raw, "\n")
		pos = end
	}

	return missed
}

// AssignTree assigns the top-level stream and then every container's
// children, scanning each container's raw text from the container's line.
func AssignTree(tokens []*mdast.Token, body string, startLine int) int {
	missed := Assign(tokens, body, startLine)
	for _, tok := range tokens {
		missed += assignChildren(tok)
	}
	return missed
}

func assignChildren(parent *mdast.Token) int {
	if !parent.HasChildren() {
		return 0
	}

	children := parent.Children()
	missed := Assign(children, parent.Raw, parent.Line)
	for _, child := range children {
		missed += assignChildren(child)
	}
	return missed
}
