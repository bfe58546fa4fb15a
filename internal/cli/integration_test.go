package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/internal/cli"
)

const testDocument = `---
title: Field Notes
---
# Heading

Hello needle.

- first
- second Needle
`

// workspace creates an isolated working directory holding doc.md and
// returns its path. User and environment configuration are masked.
func workspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte(testDocument), 0o644))
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

// execute runs the CLI with args and returns stdout and the command error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "today"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestIntegration_Render(t *testing.T) {
	workspace(t)

	out, err := execute(t, "render", "doc.md")
	require.NoError(t, err)

	assert.Contains(t, out, `class="frontmatter"`)
	assert.Contains(t, out, `data-source-line="4"`)
	assert.Contains(t, out, `data-source-line="6"`)
	assert.Contains(t, out, "Hello needle.")
	assert.NotContains(t, out, "<!DOCTYPE html>")
}

func TestIntegration_RenderDirectory(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Readme\n"), 0o644))

	out, err := execute(t, "render", ".")
	require.NoError(t, err)

	assert.Contains(t, out, "Readme")
	assert.NotContains(t, out, "needle")
}

func TestIntegration_RenderStandalone(t *testing.T) {
	workspace(t)

	out, err := execute(t, "render", "doc.md", "--standalone")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Field Notes</title>")
	assert.Contains(t, out, "<style>")
	assert.Contains(t, out, `data-source-line="4"`)
}

func TestIntegration_RenderToFile(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "render", "doc.md", "--output", "doc.html")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "doc.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello needle.")
}

func TestIntegration_RenderMissingFile(t *testing.T) {
	workspace(t)

	_, err := execute(t, "render", "missing.md")
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(err))
}

func TestIntegration_SearchText(t *testing.T) {
	workspace(t)

	out, err := execute(t, "search", "doc.md", "needle")
	require.NoError(t, err)

	assert.Contains(t, out, "(2 matches)")
	assert.Contains(t, out, "doc.md:6:7  Hello needle.")
	assert.Contains(t, out, "doc.md:9:10  - second Needle")
	assert.Contains(t, out, "2 matches on 2 lines in")
}

func TestIntegration_SearchCaseSensitive(t *testing.T) {
	workspace(t)

	out, err := execute(t, "search", "doc.md", "Needle", "--case-sensitive")
	require.NoError(t, err)

	assert.Contains(t, out, "1 match on 1 line in")
	assert.NotContains(t, out, "Hello needle.")
}

func TestIntegration_SearchJSON(t *testing.T) {
	workspace(t)

	out, err := execute(t, "search", "doc.md", "ne+dle", "--regex", "--format", "json")
	require.NoError(t, err)

	var report struct {
		Query   string `json:"query"`
		Regex   bool   `json:"regex"`
		Total   int    `json:"total"`
		Matches []struct {
			Line   int    `json:"line"`
			Column int    `json:"column"`
			Text   string `json:"text"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.True(t, report.Regex)
	assert.Equal(t, 2, report.Total)
	require.Len(t, report.Matches, 2)
	assert.Equal(t, 6, report.Matches[0].Line)
	assert.Equal(t, 7, report.Matches[0].Column)
	assert.Equal(t, "needle", report.Matches[0].Text)
	assert.Equal(t, "Needle", report.Matches[1].Text)
}

func TestIntegration_SearchNoMatches(t *testing.T) {
	workspace(t)

	out, err := execute(t, "search", "doc.md", "absent")
	require.ErrorIs(t, err, cli.ErrNoMatches)
	assert.Equal(t, cli.ExitNoMatches, cli.ExitCode(err))
	assert.Contains(t, out, `No matches for "absent"`)
}

func TestIntegration_SearchInvalidPattern(t *testing.T) {
	workspace(t)

	_, err := execute(t, "search", "doc.md", "(", "--regex")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_SearchConfigDefault(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mdcat.yml"),
		[]byte("search:\n  case_sensitive: true\n"), 0o644))

	out, err := execute(t, "search", "doc.md", "needle")
	require.NoError(t, err)
	assert.Contains(t, out, "1 match on 1 line in")
}

func TestIntegration_Blocks(t *testing.T) {
	workspace(t)

	out, err := execute(t, "blocks", "doc.md", "--format", "json")
	require.NoError(t, err)

	var rows []struct {
		Line  int    `json:"line"`
		Kind  string `json:"kind"`
		Depth int    `json:"depth"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))

	require.Len(t, rows, 6)
	assert.Equal(t, "frontmatter", rows[0].Kind)
	assert.Equal(t, 1, rows[0].Line)
	assert.Equal(t, "heading", rows[1].Kind)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "paragraph", rows[2].Kind)
	assert.Equal(t, 6, rows[2].Line)
	assert.Equal(t, "list", rows[3].Kind)
	assert.Equal(t, "list_item", rows[5].Kind)
	assert.Equal(t, 9, rows[5].Line)
	assert.Equal(t, 1, rows[5].Depth)
}

func TestIntegration_BlocksTable(t *testing.T) {
	workspace(t)

	out, err := execute(t, "blocks", "doc.md")
	require.NoError(t, err)

	assert.Contains(t, out, "LINE")
	assert.Contains(t, out, "frontmatter")
	assert.Contains(t, out, "# Heading")
	assert.Contains(t, out, "6 blocks")
}

func TestIntegration_InitCreatesLoadableConfig(t *testing.T) {
	dir := workspace(t)

	_, err := execute(t, "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".mdcat.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "render:")

	// The generated file must pass validation when discovered.
	_, err = execute(t, "render", "doc.md")
	require.NoError(t, err)

	_, err = execute(t, "init")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	_, err = execute(t, "init", "--force")
	require.NoError(t, err)
}

func TestIntegration_InvalidConfig(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mdcat.yml"),
		[]byte("server:\n  port: 99999\n"), 0o644))

	_, err := execute(t, "render", "doc.md")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_ExplicitConfig(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown_key: 1\n"), 0o644))

	_, err := execute(t, "--config", path, "render", "doc.md")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_UsageErrors(t *testing.T) {
	workspace(t)

	tests := [][]string{
		{"render"},
		{"search", "doc.md"},
		{"render", "doc.md", "--no-such-flag"},
		{"search", "doc.md", "x", "--format", "xml"},
	}

	for _, args := range tests {
		_, err := execute(t, args...)
		require.Error(t, err, "args %v", args)
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err), "args %v", args)
	}
}

func TestIntegration_Version(t *testing.T) {
	workspace(t)

	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "mdcat")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestIntegration_Help(t *testing.T) {
	workspace(t)

	out, err := execute(t, "search", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--case-sensitive")
	assert.Contains(t, out, "Global Flags:")
}
