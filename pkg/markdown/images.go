package markdown

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// AssetResolver converts a filesystem path into a reference the display
// layer can load.
type AssetResolver interface {
	// Resolve returns a loadable reference for an absolute or base-joined path.
	Resolve(path string) (string, error)

	// Resolved reports whether src is already a reference this resolver produced.
	Resolved(src string) bool
}

// FileURLResolver resolves assets to file:// URLs.
type FileURLResolver struct{}

// Resolve implements AssetResolver.
func (FileURLResolver) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve asset %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Resolved implements AssetResolver.
func (FileURLResolver) Resolved(src string) bool {
	return strings.HasPrefix(src, "file://")
}

// PrefixResolver resolves assets to Prefix followed by the escaped absolute
// path, for handlers that serve local files under a URL prefix.
type PrefixResolver struct {
	Prefix string
}

// ErrEmptyPrefix is returned when a PrefixResolver has no prefix.
var ErrEmptyPrefix = errors.New("asset prefix is empty")

// Resolve implements AssetResolver.
func (r PrefixResolver) Resolve(path string) (string, error) {
	if r.Prefix == "" {
		return "", ErrEmptyPrefix
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve asset %s: %w", path, err)
	}
	return r.Prefix + url.PathEscape(filepath.ToSlash(abs)), nil
}

// Resolved implements AssetResolver.
func (r PrefixResolver) Resolved(src string) bool {
	return r.Prefix != "" && strings.HasPrefix(src, r.Prefix)
}

// PathFromPrefix reverses PrefixResolver.Resolve for a request path.
func (r PrefixResolver) PathFromPrefix(ref string) (string, error) {
	if !r.Resolved(ref) {
		return "", fmt.Errorf("%q is not under %q", ref, r.Prefix)
	}
	p, err := url.PathUnescape(strings.TrimPrefix(ref, r.Prefix))
	if err != nil {
		return "", fmt.Errorf("decode asset path: %w", err)
	}
	return filepath.FromSlash(p), nil
}

var remotePrefixes = []string{"http://", "https://", "data:"}

// imgSrcPattern matches an img tag up to and including its quoted src value.
var imgSrcPattern = regexp.MustCompile(`(?i)<img\b[^>]*?\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// assetState carries per-render image resolution inputs through the
// parser context.
type assetState struct {
	baseDir  string
	resolver AssetResolver
	err      error
}

var assetStateKey = parser.NewContextKey()

// rewrittenHTMLAttr holds replacement markup on raw HTML nodes whose img
// sources were rewritten.
var rewrittenHTMLAttr = []byte("mdcat:html")

// resolve returns the loadable form of src, or src itself when it must be
// left alone.
func (s *assetState) resolve(src string) (string, error) {
	if s.baseDir == "" || s.resolver == nil || src == "" {
		return src, nil
	}
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(strings.ToLower(src), prefix) {
			return src, nil
		}
	}
	if s.resolver.Resolved(src) {
		return src, nil
	}

	path := src
	if unescaped, err := url.PathUnescape(src); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	return s.resolver.Resolve(path)
}

// rewriteHTML rewrites every img src inside a raw HTML fragment.
func (s *assetState) rewriteHTML(raw string) (string, bool, error) {
	var b strings.Builder
	last := 0
	changed := false

	for _, loc := range imgSrcPattern.FindAllStringSubmatchIndex(raw, -1) {
		start, end := loc[2], loc[3]
		if start < 0 {
			start, end = loc[4], loc[5]
		}
		src := raw[start:end]

		resolved, err := s.resolve(src)
		if err != nil {
			return raw, false, err
		}
		if resolved == src {
			continue
		}

		b.WriteString(raw[last:start])
		b.WriteString(resolved)
		last = end
		changed = true
	}

	if !changed {
		return raw, false, nil
	}
	b.WriteString(raw[last:])
	return b.String(), true, nil
}

// imageTransformer rewrites image destinations and raw HTML img sources
// after parsing.
type imageTransformer struct{}

// Transform implements parser.ASTTransformer.
func (imageTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	state, ok := pc.Get(assetStateKey).(*assetState)
	if !ok || state.baseDir == "" {
		return
	}
	source := reader.Source()

	//nolint:errcheck // the walker stops itself on the first error
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var err error
		switch node := n.(type) {
		case *ast.Image:
			var dest string
			dest, err = state.resolve(string(node.Destination))
			if err == nil {
				node.Destination = []byte(dest)
			}
		case *ast.HTMLBlock:
			err = state.rewriteNode(node, htmlBlockSource(node, source))
		case *ast.RawHTML:
			err = state.rewriteNode(node, rawHTMLSource(node, source))
		}
		if err != nil {
			state.err = err
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
}

func (s *assetState) rewriteNode(n ast.Node, raw string) error {
	if !strings.Contains(strings.ToLower(raw), "<img") {
		return nil
	}
	out, changed, err := s.rewriteHTML(raw)
	if err != nil {
		return err
	}
	if changed {
		n.SetAttribute(rewrittenHTMLAttr, []byte(out))
	}
	return nil
}

// rewrittenHTML returns the replacement markup stored on a raw HTML node.
func rewrittenHTML(n ast.Node) ([]byte, bool) {
	v, ok := n.Attribute(rewrittenHTMLAttr)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func htmlBlockSource(n *ast.HTMLBlock, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	if n.HasClosure() {
		b.Write(n.ClosureLine.Value(source))
	}
	return b.String()
}

func rawHTMLSource(n *ast.RawHTML, source []byte) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}
