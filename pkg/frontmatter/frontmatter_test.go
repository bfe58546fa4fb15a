package frontmatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/pkg/frontmatter"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		source    string
		wantOK    bool
		content   string
		body      string
		startLine int
	}{
		{
			name:      "simple",
			source:    "---\nk: v\n---\n# H",
			wantOK:    true,
			content:   "k: v",
			body:      "# H",
			startLine: 4,
		},
		{
			name:      "crlf",
			source:    "---\r\nk: v\r\n---\r\nbody",
			wantOK:    true,
			content:   "k: v",
			body:      "body",
			startLine: 4,
		},
		{
			name:      "closing delimiter at end of input",
			source:    "---\nkey: val\n---",
			wantOK:    true,
			content:   "key: val",
			body:      "",
			startLine: 3,
		},
		{
			name:      "multi-line content",
			source:    "---\na: 1\nb: 2\nc: 3\n---\n\ntext",
			wantOK:    true,
			content:   "a: 1\nb: 2\nc: 3",
			body:      "\ntext",
			startLine: 6,
		},
		{
			name:   "no closing delimiter",
			source: "---\nk: v\n# H",
			wantOK: false,
			body:   "---\nk: v\n# H",
		},
		{
			name:   "not at start",
			source: "\n---\nk: v\n---\n",
			wantOK: false,
			body:   "\n---\nk: v\n---\n",
		},
		{
			name:   "closing line longer than delimiter",
			source: "---\nk: v\n----\n",
			wantOK: false,
			body:   "---\nk: v\n----\n",
		},
		{
			name:   "empty",
			source: "",
			wantOK: false,
			body:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, body, ok := frontmatter.Split(tt.source)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.body, body)
			if tt.wantOK {
				assert.Equal(t, tt.content, block.Content)
				assert.Equal(t, tt.startLine, block.StartLine())
				assert.Equal(t, tt.source, block.Raw+body)
			}
		})
	}
}

func TestBlock_HTML(t *testing.T) {
	t.Parallel()

	block, _, ok := frontmatter.Split("---\nx: <script>alert(1)</script> & more\n---\n")
	require.True(t, ok)

	out := block.HTML()
	assert.Contains(t, out, `<pre class="frontmatter" data-source-line="1"><code>`)
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; more")
	assert.NotContains(t, out, "<script>")
}

func TestBlock_Meta(t *testing.T) {
	t.Parallel()

	block, _, ok := frontmatter.Split("---\ntitle: Notes\ntags: [a, b]\n---\n")
	require.True(t, ok)

	meta, err := block.Meta()
	require.NoError(t, err)
	assert.Equal(t, "Notes", meta["title"])
	assert.Equal(t, []any{"a", "b"}, meta["tags"])
	assert.Equal(t, "Notes", block.Title())
}

func TestBlock_MetaInvalid(t *testing.T) {
	t.Parallel()

	block, _, ok := frontmatter.Split("---\nkey: [unclosed\n---\n")
	require.True(t, ok)

	_, err := block.Meta()
	require.Error(t, err)
	assert.Empty(t, block.Title())
}
