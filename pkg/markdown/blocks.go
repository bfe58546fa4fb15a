package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// SourceLineAttr names the attribute carrying a block's 1-indexed source line.
const SourceLineAttr = "data-source-line"

// BlockRenderFunc renders one block node. Child nodes are rendered by the
// walker between the entering and leaving calls unless the function skips
// them.
type BlockRenderFunc = renderer.NodeRendererFunc

// blockRenderer installs the per-kind render policy on top of goldmark's
// HTML and GFM renderers.
type blockRenderer struct {
	highlighter Highlighter
	funcs       map[ast.NodeKind]BlockRenderFunc
}

func newBlockRenderer(h Highlighter) *blockRenderer {
	r := &blockRenderer{highlighter: h}
	r.funcs = map[ast.NodeKind]BlockRenderFunc{
		ast.KindHeading:         r.renderHeading,
		ast.KindParagraph:       r.renderParagraph,
		ast.KindList:            r.renderList,
		ast.KindListItem:        r.renderListItem,
		ast.KindFencedCodeBlock: r.renderCode,
		ast.KindCodeBlock:       r.renderCode,
		ast.KindBlockquote:      r.renderBlockquote,
		east.KindTable:          r.renderTable,
		ast.KindThematicBreak:   r.renderThematicBreak,
		ast.KindHTMLBlock:       r.renderHTMLBlock,
		ast.KindRawHTML:         r.renderRawHTML,
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *blockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for kind, fn := range r.funcs {
		reg.Register(kind, fn)
	}
}

// setSourceLine records the line on the node so it is rendered with the
// node's other attributes.
func setSourceLine(n ast.Node, line int) {
	n.SetAttributeString(SourceLineAttr, []byte(strconv.Itoa(line)))
}

func openTag(w util.BufWriter, tag string, n ast.Node) {
	_, _ = w.WriteString("<" + tag)
	html.RenderAttributes(w, n, nil)
	_ = w.WriteByte('>')
}

func (r *blockRenderer) renderHeading(
	w util.BufWriter, _ []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	n, ok := node.(*ast.Heading)
	if !ok {
		return ast.WalkContinue, nil
	}
	tag := "h" + strconv.Itoa(n.Level)
	if entering {
		openTag(w, tag, n)
	} else {
		_, _ = w.WriteString("</" + tag + ">\n")
	}
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderParagraph(
	w util.BufWriter, _ []byte, n ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if entering {
		openTag(w, "p", n)
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderList(
	w util.BufWriter, _ []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	n, ok := node.(*ast.List)
	if !ok {
		return ast.WalkContinue, nil
	}
	tag := "ul"
	if n.IsOrdered() {
		tag = "ol"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<" + tag)
	if n.IsOrdered() && n.Start != 1 {
		_, _ = fmt.Fprintf(w, ` start="%d"`, n.Start)
	}
	html.RenderAttributes(w, n, nil)
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderListItem(
	w util.BufWriter, _ []byte, n ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</li>\n")
		return ast.WalkContinue, nil
	}

	openTag(w, "li", n)
	if fc := n.FirstChild(); fc != nil {
		if _, ok := fc.(*ast.TextBlock); !ok {
			_ = w.WriteByte('\n')
		}
	}
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderBlockquote(
	w util.BufWriter, _ []byte, n ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if entering {
		openTag(w, "blockquote", n)
		_ = w.WriteByte('\n')
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderTable(
	w util.BufWriter, _ []byte, n ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if entering {
		openTag(w, "table", n)
		_ = w.WriteByte('\n')
	} else {
		_, _ = w.WriteString("</table>\n")
	}
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderThematicBreak(
	w util.BufWriter, _ []byte, n ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if entering {
		openTag(w, "hr", n)
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

// renderCode emits <pre LINE><code class="hljs language-TAG">...</code></pre>.
func (r *blockRenderer) renderCode(
	w util.BufWriter, source []byte, n ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var lang string
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		lang = string(fenced.Language(source))
	}

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	highlighted, err := r.highlighter.Highlight(code.String(), lang)
	if err != nil {
		return ast.WalkStop, fmt.Errorf("highlight %q code block: %w", lang, err)
	}

	class := "hljs"
	if lang != "" {
		class += " language-" + lang
	}

	openTag(w, "pre", n)
	_, _ = w.WriteString(`<code class="`)
	_, _ = w.Write(util.EscapeHTML([]byte(class)))
	_, _ = w.WriteString(`">`)
	_, _ = w.WriteString(highlighted)
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

func (r *blockRenderer) renderHTMLBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	n, ok := node.(*ast.HTMLBlock)
	if !ok || !entering {
		return ast.WalkContinue, nil
	}
	if out, ok := rewrittenHTML(n); ok {
		_, _ = w.Write(out)
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(htmlBlockSource(n, source))
	return ast.WalkContinue, nil
}

func (r *blockRenderer) renderRawHTML(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	n, ok := node.(*ast.RawHTML)
	if !ok || !entering {
		return ast.WalkSkipChildren, nil
	}
	if out, ok := rewrittenHTML(n); ok {
		_, _ = w.Write(out)
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(rawHTMLSource(n, source))
	return ast.WalkSkipChildren, nil
}
