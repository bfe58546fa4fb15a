package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/internal/ui/pretty"
	"github.com/yaklabco/mdcat/pkg/search"
)

const matchText = "# Title\n\nfind the needle here\nand another needle\n"

func TestFormatMatch(t *testing.T) {
	styles := pretty.NewStyles(false)
	matches := search.FindMatches(matchText, "needle", search.Options{})
	require.Len(t, matches, 2)

	got := styles.FormatMatch("doc.md", matchText, matches[0], false)
	assert.Equal(t, "  doc.md:3:10  find the needle here\n", got)

	got = styles.FormatMatch("doc.md", matchText, matches[1], false)
	assert.Equal(t, "  doc.md:4:13  and another needle\n", got)
}

func TestFormatMatch_WithContext(t *testing.T) {
	styles := pretty.NewStyles(false)
	matches := search.FindMatches(matchText, "needle", search.Options{})
	require.NotEmpty(t, matches)

	got := styles.FormatMatch("doc.md", matchText, matches[0], true)
	assert.Contains(t, got, "        find the needle here\n")
	assert.Contains(t, got, "                 ^^^^^^\n")
}

func TestFormatMatch_SpansLines(t *testing.T) {
	styles := pretty.NewStyles(false)
	matches := search.FindMatches(matchText, `here\nand`, search.Options{Regex: true})
	require.Len(t, matches, 1)

	got := styles.FormatMatch("doc.md", matchText, matches[0], false)
	assert.Equal(t, "  doc.md:3:17  find the needle here\n", got)
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "doc.md", styles.FormatFileHeader("doc.md", 0))
	assert.Equal(t, "doc.md (1 match)", styles.FormatFileHeader("doc.md", 1))
	assert.Equal(t, "doc.md (3 matches)", styles.FormatFileHeader("doc.md", 3))
}

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	got := styles.FormatSummaryOneLine(pretty.SearchStats{Path: "doc.md", Query: "x", Matches: 3, Lines: 2})
	assert.Equal(t, "3 matches on 2 lines in doc.md\n", got)

	got = styles.FormatSummaryOneLine(pretty.SearchStats{Path: "doc.md", Query: "x"})
	assert.Equal(t, "No matches for \"x\" in doc.md\n", got)
}

func TestFormatSummary(t *testing.T) {
	styles := pretty.NewStyles(false)

	got := styles.FormatSummary(pretty.SearchStats{Path: "doc.md", Query: "x", Matches: 1, Lines: 1, Regex: true})
	assert.Contains(t, got, "Summary")
	assert.Contains(t, got, "Matches:           1")
	assert.Contains(t, got, "Pattern:           true")
}
