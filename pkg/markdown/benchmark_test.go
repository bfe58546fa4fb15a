package markdown_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/mdcat/pkg/markdown"
)

var benchmarkDoc = "---\ntitle: Bench\n---\n" + strings.Repeat(
	"# Section\n\nSome *emphasis* and a [link](https://example.com).\n\n"+
		"- one\n- two\n\n```go\nfunc main() {}\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n",
	100)

func BenchmarkRenderDocument(b *testing.B) {
	r := markdown.New(markdown.DefaultOptions())
	doc := markdown.Document{Source: benchmarkDoc}

	b.ReportAllocs()
	for range b.N {
		if _, err := r.RenderDocument(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	r := markdown.New(markdown.DefaultOptions())

	b.ReportAllocs()
	for range b.N {
		r.Tokenize(benchmarkDoc, 1)
	}
}
