package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdcat/pkg/search"
)

// contextIndent aligns source context under the location column.
const contextIndent = "        "

// FormatMatch formats one search match for terminal output:
// the location followed by the matching line with the match highlighted.
func (s *Styles) FormatMatch(path, text string, m search.Match, showContext bool) string {
	var builder strings.Builder

	column := m.Column(text)
	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(path),
		m.Line,
		column,
	)

	lineStart, lineEnd := search.LineBounds(text, m)
	end := min(m.End, lineEnd)
	line := s.SourceLine.Render(text[lineStart:m.Start]) +
		s.Match.Render(text[m.Start:end]) +
		s.SourceLine.Render(text[end:lineEnd])

	builder.WriteString(fmt.Sprintf("  %s  %s\n", location, line))

	if showContext {
		builder.WriteString(s.FormatSourceContext(text[lineStart:lineEnd], column, m.Len()))
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret run under the
// match. Width is in bytes and is clamped to at least one caret.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	var builder strings.Builder

	builder.WriteString(contextIndent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := contextIndent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render(strings.Repeat("^", max(width, 1))) + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, matchCount int) string {
	header := s.FilePath.Render(path)
	if matchCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", matchCount, plural(matchCount, "match", "matches")))
	}
	return header
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
