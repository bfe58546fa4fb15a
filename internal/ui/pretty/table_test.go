package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/internal/ui/pretty"
	"github.com/yaklabco/mdcat/pkg/mdast"
)

func sampleTokens() []*mdast.Token {
	heading := &mdast.Token{Kind: mdast.BlockHeading, Raw: "# Title\n", Line: 1, Depth: 1}
	list := &mdast.Token{Kind: mdast.BlockList, Raw: "- one\n- two\n", Line: 3}
	mdast.AppendChild(list, &mdast.Token{Kind: mdast.BlockListItem, Raw: "- one\n", Line: 3})
	mdast.AppendChild(list, &mdast.Token{Kind: mdast.BlockListItem, Raw: "- two\n", Line: 4})
	return []*mdast.Token{heading, list}
}

func TestBlockRows(t *testing.T) {
	rows := pretty.BlockRows(sampleTokens())
	require.Len(t, rows, 4)

	assert.Equal(t, pretty.BlockRow{Line: 1, Kind: "heading", Depth: 0, Text: "# Title"}, rows[0])
	assert.Equal(t, pretty.BlockRow{Line: 3, Kind: "list", Depth: 0, Text: "- one"}, rows[1])
	assert.Equal(t, pretty.BlockRow{Line: 4, Kind: "list_item", Depth: 1, Text: "- two"}, rows[3])
}

func TestFormatBlocks(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 60)
	out := formatter.FormatBlocks(pretty.BlockRows(sampleTokens()))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "LINE")
	assert.Contains(t, lines[0], "KIND")
	assert.Equal(t, "    4    list_item  - two", strings.TrimRight(lines[5], " "))
	assert.Equal(t, " 4 blocks", lines[7])
}

func TestFormatBlocks_Empty(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 0)
	assert.Empty(t, formatter.FormatBlocks(nil))
}

func TestFormatBlocks_Truncates(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 40)
	rows := []pretty.BlockRow{{Line: 1, Kind: "paragraph", Text: strings.Repeat("word ", 20)}}

	out := formatter.FormatBlocks(rows)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, strings.Repeat("word ", 20))
}

func TestFormatBlocks_UnattributedLine(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 60)
	out := formatter.FormatBlocks([]pretty.BlockRow{{Kind: "html", Text: "<div>"}})
	assert.Contains(t, out, "    -  html")
}
