package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/mdcat/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Render.Style != config.DefaultStyle {
		t.Errorf("style = %q, want %q", result.Config.Render.Style, config.DefaultStyle)
	}
	if result.Config.Server.Port != config.DefaultPort {
		t.Errorf("port = %d, want %d", result.Config.Server.Port, config.DefaultPort)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("LoadedFrom = %v, want empty", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mdcat.yml")
	writeFile(t, configPath, "render:\n  gfm: false\nserver:\n  port: 8080\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Render.GFM {
		t.Error("expected render.gfm false from project config")
	}
	if result.Config.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", result.Config.Server.Port)
	}
	if result.Config.Render.Style != config.DefaultStyle {
		t.Errorf("style = %q, want default preserved", result.Config.Render.Style)
	}
	if len(result.LoadedFrom) != 1 || result.LoadedFrom[0] != configPath {
		t.Errorf("LoadedFrom = %v, want [%s]", result.LoadedFrom, configPath)
	}
}

func TestLoad_ProjectConfigFromParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mdcat.yaml"), "view:\n  mode: raw\n")
	nested := filepath.Join(root, "docs", "guide")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.View.Mode != "raw" {
		t.Errorf("mode = %q, want raw", result.Config.View.Mode)
	}
}

func TestLoad_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".mdcat.yml"), "server:\n  port: 9999\n")
	repo := filepath.Join(root, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Load(context.Background(), isolated(repo))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Server.Port != config.DefaultPort {
		t.Errorf("port = %d, want default; search must stop at the repo root", result.Config.Server.Port)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdcat.yml"), "server:\n  port: 8080\n  host: 0.0.0.0\n")
	explicit := filepath.Join(tmpDir, "custom", "mdcat.yaml")
	writeFile(t, explicit, "server:\n  port: 9090\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Server.Port != 9090 {
		t.Errorf("port = %d, want explicit 9090", result.Config.Server.Port)
	}
	if result.Config.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want project value kept", result.Config.Server.Host)
	}
	if len(result.LoadedFrom) != 2 {
		t.Errorf("LoadedFrom = %v, want project then explicit", result.LoadedFrom)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdcat.yml"), "search:\n  case_sensitive: true\nrender:\n  style: monokai\n")

	port := 4000
	caseSensitive := false
	format := config.FormatJSON
	opts := isolated(tmpDir)
	opts.Overrides = &Overrides{Port: &port, CaseSensitive: &caseSensitive, Format: &format}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Server.Port != 4000 {
		t.Errorf("port = %d, want 4000", result.Config.Server.Port)
	}
	if result.Config.Search.CaseSensitive {
		t.Error("CLI false must override config true")
	}
	if result.Config.Render.Style != "monokai" {
		t.Errorf("style = %q, want monokai from file", result.Config.Render.Style)
	}
	if result.Config.Format != config.FormatJSON {
		t.Errorf("format = %q, want json", result.Config.Format)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdcat.yml"), "server:\n  port: 8080\n")
	t.Setenv("MDCAT_SERVER_PORT", "7070")
	t.Setenv("MDCAT_RENDER_HARD_WRAPS", "true")

	opts := isolated(tmpDir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Server.Port != 7070 {
		t.Errorf("port = %d, want env 7070", result.Config.Server.Port)
	}
	if !result.Config.Render.HardWraps {
		t.Error("expected hard wraps from env")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("MDCAT_WATCH_DEBOUNCE_MS", "soon")

	opts := isolated(t.TempDir())
	opts.IgnoreEnv = false

	_, err := Load(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for non-integer debounce")
	}
	if !strings.Contains(err.Error(), "MDCAT_WATCH_DEBOUNCE_MS") {
		t.Errorf("error %q should name the variable", err)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "render:\n  flavour: gfm\n", "flavour"},
		{"bad yaml", "server: [\n", "parse yaml"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad mode", "view:\n  mode: split\n", "view.mode"},
		{"bad rows", "view:\n  viewport_rows: 0\n", "view.viewport_rows"},
		{"bad backup mode", "backups:\n  mode: zip\n", "backups.mode"},
		{"bad level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".mdcat.yml"), tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_UnknownStyleWarns(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdcat.yml"), "render:\n  style: not-a-style\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "not-a-style") {
		t.Errorf("Warnings = %v, want one style warning", result.Warnings)
	}
}

func TestLoad_ValidationErrorType(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdcat.yml"), "watch:\n  debounce_ms: -5\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.Field != "watch.debounce_ms" {
		t.Errorf("Field = %q, want watch.debounce_ms", verr.Field)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLoad_UserConfigFromXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "mdcat", "config.yaml"), "search:\n  regex: true\n")

	opts := isolated(t.TempDir())
	opts.IgnoreUserConfig = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !result.Config.Search.Regex {
		t.Error("expected search.regex from user config")
	}
	if result.Paths.User != filepath.Join(xdg, "mdcat", "config.yaml") {
		t.Errorf("Paths.User = %q", result.Paths.User)
	}
}
