// Package frontmatter extracts a leading "---" delimited preamble from a
// markdown document.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// delimiterPattern matches an opening "---" line, the inner content, and a
// closing "---" line optionally followed by end of input.
var delimiterPattern = regexp.MustCompile(`^---\r?\n([\s\S]*?)\r?\n---(?:\r?\n|$)`)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Block is a frontmatter region split off the start of a document.
type Block struct {
	// Raw is the full matched region including both delimiter lines.
	Raw string

	// Content is the text between the delimiter lines.
	Content string
}

// Split detects a frontmatter block at the start of source. When present it
// returns the block, the remaining body and true. A missing closing
// delimiter means there is no frontmatter: the whole source is the body.
func Split(source string) (Block, string, bool) {
	loc := delimiterPattern.FindStringSubmatchIndex(source)
	if loc == nil {
		return Block{}, source, false
	}

	block := Block{
		Raw:     source[loc[0]:loc[1]],
		Content: source[loc[2]:loc[3]],
	}
	return block, source[loc[1]:], true
}

// LineCount returns the number of line breaks inside the matched region.
func (b Block) LineCount() int {
	return strings.Count(b.Raw, "\n")
}

// StartLine returns the 1-indexed line on which the body begins: one past
// the LineCount line breaks the block spans.
func (b Block) StartLine() int {
	return 1 + b.LineCount()
}

// HTML renders the block as an escaped preformatted element tagged line 1.
func (b Block) HTML() string {
	return `<pre class="frontmatter" data-source-line="1"><code>` +
		htmlEscaper.Replace(b.Content) + "</code></pre>\n"
}

// Meta decodes the content as a YAML mapping.
// Frontmatter is displayed literally, so a decode failure never affects
// rendering; callers decide whether the error matters.
func (b Block) Meta() (map[string]any, error) {
	if strings.TrimSpace(b.Content) == "" {
		return map[string]any{}, nil
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(b.Content), &meta); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, nil
}

// Title returns the string "title" key of the metadata, if any.
func (b Block) Title() string {
	meta, err := b.Meta()
	if err != nil {
		return ""
	}
	title, _ := meta["title"].(string)
	return title
}
