package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/mdcat/pkg/mdast"
)

// tokenizer converts a goldmark block tree into block tokens whose Raw
// field is an exact, line-aligned substring of the body.
type tokenizer struct {
	body   string
	source []byte
}

func newTokenizer(body string) *tokenizer {
	return &tokenizer{body: body, source: []byte(body)}
}

// tokens resolves the children of parent starting the scan at cursor.
// It returns the produced tokens and the span they cover.
func (t *tokenizer) tokens(parent ast.Node, cursor int) ([]*mdast.Token, int, int) {
	var out []*mdast.Token
	start, end := -1, -1

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeBlock {
			continue
		}

		tok, s, e := t.token(child, cursor)
		if s >= 0 {
			if start < 0 {
				start = s
			}
			end = e
			cursor = e
		}
		if tok != nil {
			out = append(out, tok)
		}
	}

	mdast.Link(out)
	return out, start, end
}

// token builds the token for one block node. Text blocks of tight list
// items produce no token but still contribute their span.
func (t *tokenizer) token(n ast.Node, cursor int) (*mdast.Token, int, int) {
	kind, isToken := blockKind(n)

	var start, end int
	var children []*mdast.Token
	if isToken && kind.IsContainer() {
		children, start, end = t.tokens(n, cursor)
		// Container markers may sit on a line of their own before the
		// first child, as in "-\n  item".
		first, firstEnd := t.firstContentLine(cursor)
		if start < 0 || first < start {
			start = first
		}
		if end < firstEnd {
			end = firstEnd
		}
	} else {
		start, end = t.leafSpan(n, cursor)
	}

	if start < cursor {
		start = cursor
	}
	if end < start {
		end = start
	}
	if !isToken {
		return nil, start, end
	}

	tok := mdast.NewToken(kind, t.body[start:end])
	tok.Meta = n
	describe(tok, n, t.source)
	for _, child := range children {
		mdast.AppendChild(tok, child)
	}
	return tok, start, end
}

func blockKind(n ast.Node) (mdast.BlockKind, bool) {
	switch n.(type) {
	case *ast.Heading:
		return mdast.BlockHeading, true
	case *ast.Paragraph:
		return mdast.BlockParagraph, true
	case *ast.List:
		return mdast.BlockList, true
	case *ast.ListItem:
		return mdast.BlockListItem, true
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return mdast.BlockCodeBlock, true
	case *ast.Blockquote:
		return mdast.BlockBlockquote, true
	case *east.Table:
		return mdast.BlockTable, true
	case *ast.ThematicBreak:
		return mdast.BlockThematicBreak, true
	case *ast.HTMLBlock:
		return mdast.BlockHTML, true
	default:
		return 0, false
	}
}

// describe copies kind-specific attributes from the parser node.
func describe(tok *mdast.Token, n ast.Node, source []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		tok.Depth = node.Level
	case *ast.List:
		tok.Ordered = node.IsOrdered()
		tok.Start = node.Start
	case *ast.FencedCodeBlock:
		tok.Fenced = true
		tok.Lang = string(node.Language(source))
	case *east.Table:
		for _, a := range node.Alignments {
			tok.Align = append(tok.Align, alignment(a))
		}
	}
}

func alignment(a east.Alignment) mdast.Alignment {
	switch a {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignCenter:
		return mdast.AlignCenter
	case east.AlignRight:
		return mdast.AlignRight
	default:
		return mdast.AlignNone
	}
}

// leafSpan returns the line-aligned span of a leaf block.
func (t *tokenizer) leafSpan(n ast.Node, cursor int) (int, int) {
	start, end := segmentSpan(n)
	if start < 0 {
		start, end = t.firstContentLine(cursor)
	} else {
		start, end = t.lineStart(start), t.spanEnd(end)
	}

	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		if node.Info == nil && node.Lines().Len() > 0 && start > 0 {
			// Opening fence sits on the line above the first content line.
			start = t.lineStart(start - 1)
		}
		if t.isFenceLine(end) {
			end = t.nextLine(end)
		}
	case *ast.Heading:
		if t.isSetextUnderline(end) && !strings.HasPrefix(stripMarkers(t.body[start:end]), "#") {
			end = t.nextLine(end)
		}
	case *east.Table:
		for end < len(t.body) {
			line := t.body[end:t.nextLine(end)]
			if strings.TrimSpace(line) == "" || !strings.Contains(line, "|") {
				break
			}
			end = t.nextLine(end)
		}
	}

	return start, end
}

// segmentSpan returns the smallest byte range covering every source segment
// of n and its descendants, or (-1, -1) when n carries none.
func segmentSpan(n ast.Node) (int, int) {
	start, end := -1, -1
	add := func(s, e int) {
		if s < 0 || e <= s {
			return
		}
		if start < 0 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}

	//nolint:errcheck // the walker never returns an error
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := c.(type) {
		case *ast.Text:
			add(v.Segment.Start, v.Segment.Stop)
		case *ast.RawHTML:
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				add(seg.Start, seg.Stop)
			}
		case *ast.FencedCodeBlock:
			if v.Info != nil {
				add(v.Info.Segment.Start, v.Info.Segment.Stop)
			}
		case *ast.HTMLBlock:
			if v.HasClosure() {
				add(v.ClosureLine.Start, v.ClosureLine.Stop)
			}
		}

		// Lines panics on inline nodes.
		if c.Type() == ast.TypeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				add(seg.Start, seg.Stop)
			}
		}
		return ast.WalkContinue, nil
	})

	return start, end
}

// firstContentLine locates the first line at or after cursor holding more
// than whitespace and blockquote markers.
func (t *tokenizer) firstContentLine(cursor int) (int, int) {
	for pos := cursor; pos < len(t.body); {
		end := t.nextLine(pos)
		if stripMarkers(t.body[pos:end]) != "" {
			return pos, end
		}
		pos = end
	}
	return cursor, cursor
}

func (t *tokenizer) lineStart(offset int) int {
	if offset > len(t.body) {
		offset = len(t.body)
	}
	return strings.LastIndexByte(t.body[:offset], '\n') + 1
}

// spanEnd extends a segment end to the end of its line, newline included.
func (t *tokenizer) spanEnd(offset int) int {
	if offset >= len(t.body) {
		return len(t.body)
	}
	if offset > 0 && t.body[offset-1] == '\n' {
		return offset
	}
	return t.nextLine(offset)
}

// nextLine returns the offset just past the newline that ends the line
// containing offset.
func (t *tokenizer) nextLine(offset int) int {
	if offset >= len(t.body) {
		return len(t.body)
	}
	idx := strings.IndexByte(t.body[offset:], '\n')
	if idx < 0 {
		return len(t.body)
	}
	return offset + idx + 1
}

func (t *tokenizer) isFenceLine(offset int) bool {
	if offset >= len(t.body) {
		return false
	}
	line := stripMarkers(t.body[offset:t.nextLine(offset)])
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~")
}

func (t *tokenizer) isSetextUnderline(offset int) bool {
	if offset >= len(t.body) {
		return false
	}
	line := stripMarkers(t.body[offset:t.nextLine(offset)])
	if line == "" {
		return false
	}
	return strings.Trim(line, "=") == "" || strings.Trim(line, "-") == ""
}

// stripMarkers trims whitespace and leading blockquote markers.
func stripMarkers(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, " \t>"))
}
