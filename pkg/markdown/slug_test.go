package markdown_test

import (
	"testing"

	"github.com/yaklabco/mdcat/pkg/markdown"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Title", "title"},
		{"Hello World", "hello-world"},
		{"  padded  ", "padded"},
		{"Hello, *World*! <b>x</b>", "hello-world-x"},
		{"multi   space\ttab", "multi-space-tab"},
		{"keep-hyphens_and_underscores", "keep-hyphens_and_underscores"},
		{"Version 2.0 (beta)", "version-20-beta"},
		{"<em>Tagged</em>", "tagged"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := markdown.Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
