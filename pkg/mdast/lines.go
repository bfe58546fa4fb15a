package mdast

import "sort"

// LineInfo describes the byte span of one source line.
type LineInfo struct {
	// StartOffset is the byte index of the first byte of the line.
	StartOffset int

	// NewlineStart is the byte index of the line terminator ('\r' or '\n'),
	// or the end of content for the final line.
	NewlineStart int

	// EndOffset is the byte index just past the line terminator.
	EndOffset int
}

// Lines indexes content by line for offset/line conversion.
type Lines struct {
	Content string
	Info    []LineInfo
}

// BuildLines constructs line metadata from content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content string) *Lines {
	lines := &Lines{Content: content, Info: []LineInfo{}}
	if content == "" {
		return lines
	}

	lineStart := 0
	for idx := 0; idx < len(content); idx++ {
		if content[idx] != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines.Info = append(lines.Info, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// Last line (may not have trailing newline).
	lines.Info = append(lines.Info, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// Count returns the number of lines.
func (l *Lines) Count() int {
	return len(l.Info)
}

// LineAt converts a byte offset to a 1-based line number.
// Offsets past the end map to the last line; negative offsets return 0.
func (l *Lines) LineAt(offset int) int {
	if offset < 0 || len(l.Info) == 0 {
		return 0
	}
	if offset >= len(l.Content) {
		return len(l.Info)
	}

	idx := sort.Search(len(l.Info), func(i int) bool {
		return l.Info[i].EndOffset > offset
	})
	if idx >= len(l.Info) {
		idx = len(l.Info) - 1
	}
	return idx + 1
}

// Offset returns the byte offset where the 1-based line begins.
// Returns (0, false) if the line is out of range.
func (l *Lines) Offset(line int) (int, bool) {
	if line < 1 || line > len(l.Info) {
		return 0, false
	}
	return l.Info[line-1].StartOffset, true
}

// LineContent returns the text of a 1-based line, excluding the newline.
func (l *Lines) LineContent(line int) string {
	if line < 1 || line > len(l.Info) {
		return ""
	}
	info := l.Info[line-1]
	return l.Content[info.StartOffset:info.NewlineStart]
}

// Clamp limits line to the valid range [1, Count()], returning 1 for empty content.
func (l *Lines) Clamp(line int) int {
	if line < 1 || len(l.Info) == 0 {
		return 1
	}
	if line > len(l.Info) {
		return len(l.Info)
	}
	return line
}
