package markdown

import (
	"regexp"
	"strings"
)

var (
	slugTags     = regexp.MustCompile(`<[^>]*>`)
	slugDisallow = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
)

// Slug derives a heading identifier from its inline text: lowercase,
// tags stripped, characters other than word characters, whitespace and
// hyphens removed, trimmed, whitespace runs collapsed to one hyphen.
//
// Duplicate headings produce duplicate identifiers.
func Slug(text string) string {
	s := strings.ToLower(text)
	s = slugTags.ReplaceAllString(s, "")
	s = slugDisallow.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return slugSpaces.ReplaceAllString(s, "-")
}
