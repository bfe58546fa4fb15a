package highlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdcat/pkg/dom"
	"github.com/yaklabco/mdcat/pkg/highlight"
)

const sample = `<h1 data-source-line="1" id="hello">Hello</h1>` +
	`<p data-source-line="3">hello <em>HELLO</em> world, hello</p>` +
	`<p data-source-line="5">icon <svg><text>hello</text></svg> after</p>`

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := dom.Parse(markup)
	require.NoError(t, err)
	return root
}

func TestApply(t *testing.T) {
	t.Parallel()

	root := parse(t, sample)
	count := highlight.Apply(root, "hello", false, 2)

	assert.Equal(t, 4, count)
	marks := highlight.Markers(root)
	require.Len(t, marks, 4)

	texts := make([]string, 0, len(marks))
	for _, m := range marks {
		texts = append(texts, dom.TextContent(m))
	}
	assert.Equal(t, []string{"Hello", "hello", "HELLO", "hello"}, texts)

	current := highlight.CurrentMarker(root)
	require.NotNil(t, current)
	assert.Same(t, marks[2], current)
	assert.Equal(t, "em", current.Parent.Data)
}

func TestApply_CaseSensitive(t *testing.T) {
	t.Parallel()

	root := parse(t, sample)
	assert.Equal(t, 2, highlight.Apply(root, "hello", true, 0))
}

func TestApply_SkipsSVG(t *testing.T) {
	t.Parallel()

	root := parse(t, `<p>a<svg><title>a</title></svg></p>`)
	assert.Equal(t, 1, highlight.Apply(root, "a", false, 0))
}

func TestApply_EmptyQuery(t *testing.T) {
	t.Parallel()

	root := parse(t, sample)
	before := dom.Render(root)
	assert.Zero(t, highlight.Apply(root, "", false, 0))
	assert.Equal(t, before, dom.Render(root))
}

func TestApply_LiteralMetacharacters(t *testing.T) {
	t.Parallel()

	root := parse(t, `<p>cost $1.00 or $1x00</p>`)
	assert.Equal(t, 1, highlight.Apply(root, "$1.00", false, 0))
}

func TestApply_WholeTextNode(t *testing.T) {
	t.Parallel()

	root := parse(t, `<p>abc</p>`)
	require.Equal(t, 1, highlight.Apply(root, "abc", false, 0))
	assert.Equal(t, `<p><mark class="search-highlight current">abc</mark></p>`, dom.Render(root))
}

func TestClear_RoundTrip(t *testing.T) {
	t.Parallel()

	queries := []string{"hello", "l", "o w", "after", "missing", "HELLO wor"}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			t.Parallel()

			root := parse(t, sample)
			before := dom.Render(root)

			for i := 0; i < 3; i++ {
				highlight.Apply(root, q, false, i)
				highlight.Clear(root)
				assert.Equal(t, before, dom.Render(root))
			}
			assert.Empty(t, highlight.Markers(root))
		})
	}
}

func TestClear_NoMarkers(t *testing.T) {
	t.Parallel()

	root := parse(t, sample)
	before := dom.Render(root)
	assert.Zero(t, highlight.Clear(root))
	assert.Equal(t, before, dom.Render(root))
}
