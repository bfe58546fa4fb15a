package highlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdcat/pkg/dom"
	"github.com/yaklabco/mdcat/pkg/highlight"
)

func TestAnnotator_SyncGate(t *testing.T) {
	t.Parallel()

	var scrolled []*html.Node
	a := highlight.NewAnnotator(func(mark *html.Node) {
		scrolled = append(scrolled, mark)
	})
	a.Reset(parse(t, sample))

	q := highlight.Query{Open: true, Text: "hello"}
	assert.True(t, a.Sync(q))
	assert.Equal(t, 4, a.Count())
	require.Len(t, scrolled, 1)

	after := dom.Render(a.Root())
	assert.False(t, a.Sync(q), "unchanged tuple must not redraw")
	assert.Equal(t, after, dom.Render(a.Root()))
	assert.Len(t, scrolled, 1)

	q.Index = 1
	assert.True(t, a.Sync(q))
	assert.Equal(t, "hello", dom.TextContent(a.Current()))
	assert.Len(t, scrolled, 2)

	q.CaseSensitive = true
	assert.True(t, a.Sync(q))
	assert.Equal(t, 2, a.Count())
}

func TestAnnotator_CloseClears(t *testing.T) {
	t.Parallel()

	a := highlight.NewAnnotator(nil)
	root := parse(t, sample)
	before := dom.Render(root)
	a.Reset(root)

	a.Sync(highlight.Query{Open: true, Text: "world"})
	require.Equal(t, 1, a.Count())

	assert.True(t, a.Sync(highlight.Query{}))
	assert.Zero(t, a.Count())
	assert.Nil(t, a.Current())
	assert.Equal(t, before, dom.Render(root))
}

func TestAnnotator_ResetRedraws(t *testing.T) {
	t.Parallel()

	a := highlight.NewAnnotator(nil)
	q := highlight.Query{Open: true, Text: "hello"}

	a.Reset(parse(t, sample))
	require.True(t, a.Sync(q))

	a.Reset(parse(t, `<p>hello again</p>`))
	assert.True(t, a.Sync(q), "a new tree must be annotated even with the same tuple")
	assert.Equal(t, 1, a.Count())
}

func TestAnnotator_NoTree(t *testing.T) {
	t.Parallel()

	a := highlight.NewAnnotator(nil)
	assert.False(t, a.Sync(highlight.Query{Open: true, Text: "x"}))
	assert.Nil(t, a.Current())
}
