// Package mdast defines the block token tree produced by the markdown
// tokenizer and consumed by the line mapper and renderer.
package mdast

// BlockKind classifies a block-level token.
type BlockKind uint16

// Block kinds produced by the tokenizer.
const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockList
	BlockListItem
	BlockCodeBlock
	BlockBlockquote
	BlockTable
	BlockThematicBreak
	BlockHTML
)

var blockKindNames = [...]string{
	BlockHeading:       "heading",
	BlockParagraph:     "paragraph",
	BlockList:          "list",
	BlockListItem:      "list_item",
	BlockCodeBlock:     "code",
	BlockBlockquote:    "blockquote",
	BlockTable:         "table",
	BlockThematicBreak: "hr",
	BlockHTML:          "html",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// IsNavigable reports whether rendered output for this kind must carry a
// source line attribute.
func (k BlockKind) IsNavigable() bool {
	return k != BlockHTML
}

// IsContainer reports whether tokens of this kind hold child block tokens.
func (k BlockKind) IsContainer() bool {
	switch k {
	case BlockList, BlockListItem, BlockBlockquote:
		return true
	default:
		return false
	}
}

// Alignment is the horizontal alignment of a table column.
type Alignment uint8

// Column alignments.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// Token is one block-level unit of a parsed markdown body.
//
// Raw is the exact substring of the body the token was parsed from; sibling
// tokens appear in document order and their Raw spans never overlap.
type Token struct {
	Kind BlockKind

	// Raw is the matched source text.
	Raw string

	// Line is the 1-indexed source line. Zero until the line mapper runs.
	Line int

	// Depth is the heading level (1-6).
	Depth int

	// Lang is the code block info tag, possibly empty.
	Lang string

	// Fenced is set for fenced code blocks.
	Fenced bool

	// Ordered and Start describe list numbering.
	Ordered bool
	Start   int

	// Align holds table column alignments.
	Align []Alignment

	// Tree structure pointers.
	Parent     *Token
	FirstChild *Token
	LastChild  *Token
	Prev       *Token
	Next       *Token

	// Meta holds the parser node the token was built from.
	// Must be treated as opaque by generic logic.
	Meta any
}

// HasChildren returns true if this token has any children.
func (t *Token) HasChildren() bool {
	return t.FirstChild != nil
}

// ChildCount returns the number of direct children.
func (t *Token) ChildCount() int {
	count := 0
	for child := t.FirstChild; child != nil; child = child.Next {
		count++
	}
	return count
}

// Children returns a slice of all direct children.
func (t *Token) Children() []*Token {
	var children []*Token
	for child := t.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}
