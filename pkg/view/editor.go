package view

import (
	"sync"

	"github.com/yaklabco/mdcat/pkg/mdast"
)

// Editor is the raw-text editing surface. Lines are 1-indexed.
type Editor interface {
	Content() string
	SetContent(content string)
	// GoToLine moves the cursor to line, clamped to the document, and
	// scrolls it to the top of the viewport.
	GoToLine(line int, focus bool)
	// VisibleLine returns the line at the cursor when the editor has
	// focus, otherwise the top visible line.
	VisibleLine() int
}

// MemoryEditor is an in-memory Editor with a viewport of a fixed number of
// rows.
type MemoryEditor struct {
	mu      sync.Mutex
	lines   *mdast.Lines
	rows    int
	cursor  int
	top     int
	focused bool
}

// NewMemoryEditor creates an editor showing rows lines at a time.
func NewMemoryEditor(rows int) *MemoryEditor {
	if rows < 1 {
		rows = 1
	}
	return &MemoryEditor{
		lines:  mdast.BuildLines(""),
		rows:   rows,
		cursor: 1,
		top:    1,
	}
}

// Content returns the text being edited.
func (e *MemoryEditor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lines.Content
}

// SetContent replaces the text and keeps the cursor within range.
func (e *MemoryEditor) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = mdast.BuildLines(content)
	e.cursor = e.lines.Clamp(e.cursor)
	e.top = e.lines.Clamp(e.top)
}

// GoToLine implements Editor.
func (e *MemoryEditor) GoToLine(line int, focus bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = e.lines.Clamp(line)
	e.top = e.cursor
	if focus {
		e.focused = true
	}
}

// VisibleLine implements Editor.
func (e *MemoryEditor) VisibleLine() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.focused {
		return e.cursor
	}
	return e.top
}

// Rows returns the viewport height.
func (e *MemoryEditor) Rows() int {
	return e.rows
}

// Cursor returns the cursor line.
func (e *MemoryEditor) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Focused reports whether the editor holds focus.
func (e *MemoryEditor) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// Blur drops focus.
func (e *MemoryEditor) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = false
}

// ScrollTo sets the top visible line without moving the cursor.
func (e *MemoryEditor) ScrollTo(line int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.top = e.lines.Clamp(line)
}
