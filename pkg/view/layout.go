package view

import "github.com/yaklabco/mdcat/pkg/dom"

// DefaultViewportRows is the preview height used when none is configured.
const DefaultViewportRows = 40

// Layout places rendered blocks on the vertical axis of the preview.
// Offsets are in rows from the top of the document.
type Layout interface {
	Top(b dom.Block) int
}

// LineLayout places every block at its source line, one row per line.
type LineLayout struct{}

// Top implements Layout.
func (LineLayout) Top(b dom.Block) int {
	if b.Line < 1 {
		return 0
	}
	return b.Line - 1
}

// LayoutFunc adapts a function to Layout.
type LayoutFunc func(b dom.Block) int

// Top implements Layout.
func (f LayoutFunc) Top(b dom.Block) int {
	return f(b)
}
