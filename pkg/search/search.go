// Package search locates literal or pattern matches in a text buffer.
package search

import (
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode/utf8"
)

// Options controls how a query is interpreted.
type Options struct {
	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool

	// Regex compiles the query as a regular expression instead of
	// matching it verbatim.
	Regex bool
}

// Match is one occurrence of a query in a text buffer.
//
// Start and End are byte offsets into that exact buffer; Line is 1-indexed
// and counts the newlines strictly before Start.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Line  int `json:"line"`
}

// Len returns the match length in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

// Text returns the matched substring of text.
func (m Match) Text(text string) string {
	if m.Start < 0 || m.End > len(text) || m.Start > m.End {
		return ""
	}
	return text[m.Start:m.End]
}

// Column returns the 1-indexed rune column of the match start within its line.
func (m Match) Column(text string) int {
	lineStart, _ := LineBounds(text, m)
	return utf8.RuneCountInString(text[lineStart:m.Start]) + 1
}

// LineBounds returns the byte range of the line containing the match start,
// excluding the newline.
func LineBounds(text string, m Match) (int, int) {
	start := strings.LastIndexByte(text[:m.Start], '\n') + 1
	end := strings.IndexByte(text[m.Start:], '\n')
	if end < 0 {
		return start, len(text)
	}
	return start, m.Start + end
}

// EscapeLiteral quotes every pattern metacharacter in q.
func EscapeLiteral(q string) string {
	return regexp.QuoteMeta(q)
}

// Compile builds the pattern for query. It returns nil for an empty query
// or invalid pattern syntax.
func Compile(query string, opts Options) *regexp.Regexp {
	if query == "" {
		return nil
	}

	pattern := query
	if !opts.Regex {
		pattern = EscapeLiteral(query)
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

// FindMatches returns every non-overlapping match of query in text, in
// left-to-right order. An empty query or invalid pattern yields no matches.
func FindMatches(text, query string, opts Options) []Match {
	re := Compile(query, opts)
	if re == nil {
		return []Match{}
	}
	return FindPattern(text, re)
}

// FindPattern reports the matches of a compiled pattern. The scan resumes
// at each match end and steps one rune past zero-width matches, so it
// always terminates. An empty match directly after a non-empty one is
// reported, which regexp's FindAll leaves out.
func FindPattern(text string, re *regexp.Regexp) []Match {
	locs := re.FindAllStringIndex(text, -1)
	matches := make([]Match, 0, len(locs))

	var empty *syntax.Regexp
	line := 1
	counted := 0
	add := func(start, end int) {
		line += strings.Count(text[counted:start], "\n")
		counted = start
		matches = append(matches, Match{Start: start, End: end, Line: line})
	}

	for i, loc := range locs {
		add(loc[0], loc[1])
		if loc[0] == loc[1] {
			continue
		}
		if i+1 < len(locs) && locs[i+1][0] == loc[1] {
			continue
		}
		if empty == nil {
			parsed, err := syntax.Parse(re.String(), syntax.Perl)
			if err != nil {
				continue
			}
			empty = parsed
		}
		if matchesEmptyAt(empty, text, loc[1]) {
			add(loc[1], loc[1])
		}
	}
	return matches
}

// matchesEmptyAt reports whether re can match the empty string at byte
// offset pos of text, honoring anchors and word boundaries.
func matchesEmptyAt(re *syntax.Regexp, text string, pos int) bool {
	before, after := rune(-1), rune(-1)
	if pos > 0 {
		before, _ = utf8.DecodeLastRuneInString(text[:pos])
	}
	if pos < len(text) {
		after, _ = utf8.DecodeRuneInString(text[pos:])
	}
	return acceptsEmpty(re, syntax.EmptyOpContext(before, after))
}

func acceptsEmpty(re *syntax.Regexp, ctx syntax.EmptyOp) bool {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return true
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	case syntax.OpBeginLine:
		return ctx&syntax.EmptyBeginLine != 0
	case syntax.OpEndLine:
		return ctx&syntax.EmptyEndLine != 0
	case syntax.OpBeginText:
		return ctx&syntax.EmptyBeginText != 0
	case syntax.OpEndText:
		return ctx&syntax.EmptyEndText != 0
	case syntax.OpWordBoundary:
		return ctx&syntax.EmptyWordBoundary != 0
	case syntax.OpNoWordBoundary:
		return ctx&syntax.EmptyNoWordBoundary != 0
	case syntax.OpCapture, syntax.OpPlus:
		return acceptsEmpty(re.Sub[0], ctx)
	case syntax.OpStar, syntax.OpQuest:
		return true
	case syntax.OpRepeat:
		return re.Min == 0 || acceptsEmpty(re.Sub[0], ctx)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !acceptsEmpty(sub, ctx) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if acceptsEmpty(sub, ctx) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
