// Package markdown renders markdown documents to HTML in which every
// block-level element carries the source line it came from.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/frontmatter"
	"github.com/yaklabco/mdcat/pkg/linemap"
	"github.com/yaklabco/mdcat/pkg/mdast"
)

// Document is the input to one render: source text plus the directory
// relative image paths are resolved against. It is never modified.
type Document struct {
	Source  string
	BaseDir string
}

// Result is the output of one render.
type Result struct {
	// HTML is the annotated markup.
	HTML string

	// Tokens is the annotated top-level block token stream of the body.
	Tokens []*mdast.Token

	// Frontmatter is the stripped preamble, if any.
	Frontmatter *frontmatter.Block

	// Title is the frontmatter title, else the text of the first heading.
	Title string

	// Unattributed counts tokens the line mapper could not locate.
	Unattributed int
}

// Options configures a Renderer.
type Options struct {
	// Style is the chroma style for the default highlighter.
	Style string

	// GFM enables tables, strikethrough, task lists and autolinks.
	GFM bool

	// HardWraps renders soft line breaks as <br>.
	HardWraps bool

	// Highlighter overrides the default chroma highlighter.
	Highlighter Highlighter

	// Assets resolves local image paths. Nil leaves sources untouched.
	Assets AssetResolver

	// Logger receives debug output. Nil uses the default logger.
	Logger *log.Logger
}

// DefaultOptions returns Options with GFM enabled and file:// assets.
func DefaultOptions() Options {
	return Options{
		Style:  DefaultStyle,
		GFM:    true,
		Assets: FileURLResolver{},
	}
}

// Renderer converts markdown to line-annotated HTML. It is safe for
// concurrent use; all per-render state lives on the parsed tree.
type Renderer struct {
	md          goldmark.Markdown
	highlighter Highlighter
	assets      AssetResolver
	logger      *log.Logger
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	h := opts.Highlighter
	if h == nil {
		h = NewChromaHighlighter(opts.Style)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}

	rendererOpts := []renderer.Option{
		html.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(newBlockRenderer(h), 100)),
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(imageTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	return &Renderer{
		md:          md,
		highlighter: h,
		assets:      opts.Assets,
		logger:      logger,
	}
}

// Render renders source, resolving relative images against baseDir.
func (r *Renderer) Render(source, baseDir string) (string, error) {
	res, err := r.RenderDocument(Document{Source: source, BaseDir: baseDir})
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// RenderDocument runs the full pipeline: frontmatter split, tokenize,
// line mapping, then rendering with the per-kind policy.
func (r *Renderer) RenderDocument(doc Document) (*Result, error) {
	res := &Result{}

	body := doc.Source
	startLine := 1
	if block, rest, ok := frontmatter.Split(doc.Source); ok {
		res.Frontmatter = &block
		res.Title = block.Title()
		body = rest
		startLine = block.StartLine()
	}

	root, err := r.parse(body, doc.BaseDir)
	if err != nil {
		return nil, err
	}
	source := []byte(body)

	tokens, _, _ := newTokenizer(body).tokens(root, 0)
	res.Tokens = tokens
	res.Unattributed = linemap.AssignTree(tokens, body, startLine)
	if res.Unattributed > 0 {
		r.logger.Debug("tokens without source position",
			logging.FieldCount, res.Unattributed)
	}
	annotate(tokens, source)

	if res.Title == "" {
		res.Title = firstHeading(tokens, source)
	}

	var buf bytes.Buffer
	if res.Frontmatter != nil {
		buf.WriteString(res.Frontmatter.HTML())
	}
	if err := r.md.Renderer().Render(&buf, source, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	res.HTML = buf.String()

	return res, nil
}

// Tokenize parses body and returns its annotated block token stream
// without rendering.
func (r *Renderer) Tokenize(body string, startLine int) []*mdast.Token {
	root, err := r.parse(body, "")
	if err != nil {
		return nil
	}
	tokens, _, _ := newTokenizer(body).tokens(root, 0)
	linemap.AssignTree(tokens, body, startLine)
	return tokens
}

// WriteCSS writes the highlight stylesheet when the highlighter has one.
func (r *Renderer) WriteCSS(buf *bytes.Buffer) error {
	if h, ok := r.highlighter.(*ChromaHighlighter); ok {
		return h.WriteCSS(buf)
	}
	return nil
}

func (r *Renderer) parse(body, baseDir string) (ast.Node, error) {
	state := &assetState{baseDir: baseDir, resolver: r.assets}
	pc := parser.NewContext()
	pc.Set(assetStateKey, state)

	root := r.md.Parser().Parse(text.NewReader([]byte(body)), parser.WithContext(pc))
	if state.err != nil {
		return nil, fmt.Errorf("resolve image: %w", state.err)
	}
	return root, nil
}

// annotate copies token lines onto the parser nodes and assigns heading ids.
func annotate(tokens []*mdast.Token, source []byte) {
	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	mdast.Walk(tokens, func(tok *mdast.Token) error {
		n, ok := tok.Meta.(ast.Node)
		if !ok || !tok.Kind.IsNavigable() {
			return nil
		}
		setSourceLine(n, tok.Line)
		if tok.Kind == mdast.BlockHeading {
			n.SetAttributeString("id", []byte(Slug(headingText(n, source))))
		}
		return nil
	})
}

// headingText returns the inline text of a heading as it renders: link
// and image destinations are dropped, image alt text is dropped with its
// tag, raw inline HTML is kept for Slug to strip.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	writeInlineText(&b, n, source)
	return b.String()
}

func writeInlineText(b *strings.Builder, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.Image:
		case *ast.AutoLink:
			b.Write(c.Label(source))
		case *ast.RawHTML:
			for i := 0; i < c.Segments.Len(); i++ {
				seg := c.Segments.At(i)
				b.Write(seg.Value(source))
			}
		default:
			writeInlineText(b, c, source)
		}
	}
}

func firstHeading(tokens []*mdast.Token, source []byte) string {
	for _, tok := range tokens {
		if tok.Kind != mdast.BlockHeading {
			continue
		}
		if n, ok := tok.Meta.(ast.Node); ok {
			return strings.TrimSpace(slugTags.ReplaceAllString(headingText(n, source), ""))
		}
	}
	return ""
}
