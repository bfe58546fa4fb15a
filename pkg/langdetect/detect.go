// Package langdetect guesses the language of an untagged code block.
// It uses go-enry for shebang, alias and classifier lookups, preceded by a
// small table of highly indicative patterns.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Tag names returned by Detect. They match common fence info tags.
const (
	Go         = "go"
	Python     = "python"
	JavaScript = "javascript"
	JSON       = "json"
	YAML       = "yaml"
	HTML       = "html"
	SQL        = "sql"
	Rust       = "rust"
	Dockerfile = "dockerfile"
	Bash       = "bash"
)

// classifierCandidates bounds the enry classifier to languages that show up
// in documentation code blocks.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

type detector struct {
	tag   string
	match func(code, trimmed string) bool
}

// detectors are checked in order of specificity.
var detectors = []detector{
	{Go, func(_, trimmed string) bool {
		return strings.HasPrefix(trimmed, "package ")
	}},
	{Python, looksLikePython},
	{HTML, func(_, trimmed string) bool {
		lower := strings.ToLower(trimmed)
		return containsAny(lower, "<!doctype html", "<html", "<head>", "<body>")
	}},
	{JSON, func(_, trimmed string) bool {
		return (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) &&
			strings.Contains(trimmed, `"`)
	}},
	{Dockerfile, func(code, trimmed string) bool {
		return strings.HasPrefix(trimmed, "FROM ") ||
			(strings.Contains(code, "\nFROM ") && strings.Contains(code, "\nRUN ")) ||
			(strings.Contains(code, "WORKDIR ") && strings.Contains(code, "COPY "))
	}},
	{SQL, func(_, trimmed string) bool {
		upper := strings.ToUpper(trimmed)
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, kw) {
				return true
			}
		}
		return false
	}},
	{Rust, func(code, _ string) bool {
		return containsAny(code, "fn main()", "println!", "let mut ")
	}},
	{JavaScript, func(code, _ string) bool {
		return containsAny(code, "=>", "const ", "let ", "console.log")
	}},
	{YAML, looksLikeYAML},
}

// Detect returns the most likely fence tag for code, or "" when nothing
// is confident enough.
func Detect(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	if lang, safe := enry.GetLanguageByShebang([]byte(code)); safe {
		return normalize(lang)
	}

	trimmed := strings.TrimSpace(code)
	for _, d := range detectors {
		if d.match(code, trimmed) {
			return d.tag
		}
	}

	if lang, safe := enry.GetLanguageByClassifier([]byte(code), classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return ""
}

// fenceAliases covers short fence tags go-enry does not list as aliases.
var fenceAliases = map[string]string{
	"py":     Python,
	"sh":     Bash,
	"shell":  Bash,
	"zsh":    Bash,
	"yml":    YAML,
	"js":     JavaScript,
	"ts":     "typescript",
	"rb":     "ruby",
	"rs":     Rust,
	"golang": Go,
}

// Canonical maps a fence info tag such as "js" or "sh" to the tag Detect
// would report for the same language. Unknown tags are returned lowercased.
func Canonical(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if lang, ok := fenceAliases[tag]; ok {
		return lang
	}
	if lang, ok := enry.GetLanguageByAlias(tag); ok {
		return normalize(lang)
	}
	return tag
}

func looksLikePython(code, _ string) bool {
	if strings.Contains(code, "def ") && strings.Contains(code, "):") {
		return true
	}
	// Go uses "import (".
	if strings.Contains(code, "import ") && !strings.Contains(code, "import (") {
		if strings.Contains(code, "from ") || strings.HasPrefix(strings.TrimSpace(code), "import ") {
			return true
		}
	}
	return containsAny(code, "__name__", "__main__")
}

// looksLikeYAML counts "key: value" lines and root list items.
func looksLikeYAML(code, _ string) bool {
	count := 0
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ": ") &&
			!strings.ContainsAny(line, "({") &&
			!strings.HasPrefix(line, `"`) {
			count++
		}
		if strings.HasPrefix(line, "- ") {
			count++
		}
	}
	return count >= 2
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return Bash
	}
	return strings.ToLower(lang)
}
