package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PreferredDocuments are the file names, compared case-insensitively, that
// FindDocument picks before any other markdown file.
//
//nolint:gochecknoglobals // read-only lookup table
var PreferredDocuments = []string{"readme.md", "agents.md", "claude.md", "skill.md"}

// IsMarkdown reports whether name has a markdown extension.
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// ResolveDocument returns path itself when it is a file, or the document
// chosen by FindDocument when it is a directory.
func ResolveDocument(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return "", classify(abs, err)
	}
	if !stat.IsDir() {
		return abs, nil
	}
	return FindDocument(abs)
}

// FindDocument picks the document to open in dir: the first entry of
// PreferredDocuments that exists, else the first markdown file in name
// order.
func FindDocument(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", classify(dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&os.ModeSymlink != 0 {
			files = append(files, e.Name())
		}
	}

	for _, want := range PreferredDocuments {
		for _, name := range files {
			if strings.EqualFold(name, want) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	for _, name := range files {
		if IsMarkdown(name) {
			return filepath.Join(dir, name), nil
		}
	}

	return "", fmt.Errorf("%w in %s", ErrNoMarkdown, dir)
}
