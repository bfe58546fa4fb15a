package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yaklabco/mdcat/pkg/langdetect"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Highlighter turns code into a highlighted markup fragment. lang is the
// declared info tag and may be empty or unknown, in which case the
// highlighter picks a language itself.
type Highlighter interface {
	Highlight(code, lang string) (string, error)
}

// HighlighterFunc adapts a function to the Highlighter interface.
type HighlighterFunc func(code, lang string) (string, error)

// Highlight calls f(code, lang).
func (f HighlighterFunc) Highlight(code, lang string) (string, error) {
	return f(code, lang)
}

// ChromaHighlighter highlights code with chroma, emitting class-based spans.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewChromaHighlighter creates a highlighter for the named chroma style.
// Unknown styles fall back to chroma's default style.
func NewChromaHighlighter(style string) *ChromaHighlighter {
	if style == "" {
		style = DefaultStyle
	}
	return &ChromaHighlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Highlight implements Highlighter.
func (h *ChromaHighlighter) Highlight(code, lang string) (string, error) {
	lexer := chroma.Coalesce(h.lexer(code, lang))

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise code block: %w", err)
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("format code block: %w", err)
	}
	return buf.String(), nil
}

// WriteCSS writes the stylesheet for the highlighter's classes.
func (h *ChromaHighlighter) WriteCSS(w io.Writer) error {
	if err := h.formatter.WriteCSS(w, h.style); err != nil {
		return fmt.Errorf("write highlight css: %w", err)
	}
	return nil
}

// lexer selects by declared tag first, then by detection.
//
//nolint:ireturn // chroma.Lexer is an external interface type
func (h *ChromaHighlighter) lexer(code, lang string) chroma.Lexer {
	if lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
		if l := lexers.Get(langdetect.Canonical(lang)); l != nil {
			return l
		}
	}
	if tag := langdetect.Detect(code); tag != "" {
		if l := lexers.Get(tag); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(code); l != nil {
		return l
	}
	return lexers.Fallback
}
