package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/mdcat/pkg/mdast"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 3 // LINE, KIND, TEXT
	nestIndent       = "  "
	ellipsis         = "..."
	minLineWidth     = 4
	minKindWidth     = 9
	minTextWidth     = 20
	heavySeparator   = "="
)

// BlockRow represents a single row in the block table.
type BlockRow struct {
	Line  int
	Kind  string
	Depth int
	Text  string
}

// BlockRows flattens a token tree into rows in document order. Nested
// tokens carry their container depth.
func BlockRows(tokens []*mdast.Token) []BlockRow {
	var rows []BlockRow
	var visit func(toks []*mdast.Token, depth int)
	visit = func(toks []*mdast.Token, depth int) {
		for _, tok := range toks {
			rows = append(rows, BlockRow{
				Line:  tok.Line,
				Kind:  tok.Kind.String(),
				Depth: depth,
				Text:  summarize(tok.Raw),
			})
			visit(tok.Children(), depth+1)
		}
	}
	visit(tokens, 0)
	return rows
}

// summarize returns the first non-blank line of raw.
func summarize(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// TableFormatter formats block rows as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = DefaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

type columnWidths struct {
	line int
	kind int
	text int
}

// FormatBlocks formats rows as a table with a heavy rule above and below.
func (t *TableFormatter) FormatBlocks(rows []BlockRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.styles.TableHeader.Render(fmt.Sprintf(" %*s  %-*s  %s",
		widths.line, "LINE", widths.kind, "KIND", "TEXT")))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	builder.WriteString(t.styles.Dim.Render(fmt.Sprintf(" %d %s", len(rows), plural(len(rows), "block", "blocks"))))
	builder.WriteString("\n")

	return builder.String()
}

func (t *TableFormatter) calculateColumnWidths(rows []BlockRow) columnWidths {
	widths := columnWidths{line: minLineWidth, kind: minKindWidth}

	for _, row := range rows {
		widths.line = max(widths.line, len(strconv.Itoa(row.Line)))
		widths.kind = max(widths.kind, len(row.Kind)+len(nestIndent)*row.Depth)
	}

	// The text column takes whatever the terminal leaves.
	used := widths.line + widths.kind + tablePadding*tableColumnCount
	widths.text = max(minTextWidth, t.termWidth-used)

	return widths
}

func (t *TableFormatter) formatRow(row BlockRow, widths columnWidths) string {
	line := "-"
	if row.Line > 0 {
		line = strconv.Itoa(row.Line)
	}
	kind := strings.Repeat(nestIndent, row.Depth) + row.Kind

	return fmt.Sprintf(" %s  %s  %s",
		t.styles.Line.Render(fmt.Sprintf("%*s", widths.line, line)),
		t.styles.Kind.Render(fmt.Sprintf("%-*s", widths.kind, kind)),
		truncate(row.Text, widths.text),
	)
}

func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	total := widths.line + widths.kind + widths.text + tablePadding*tableColumnCount
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, min(total, t.termWidth)))
}

// truncate shortens s to at most width runes, marking the cut.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-len(ellipsis)]) + ellipsis
}
