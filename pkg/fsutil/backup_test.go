package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/mdcat/pkg/fsutil"
)

func TestBackupPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode fsutil.BackupMode
		want string
	}{
		{"sidecar", fsutil.BackupModeSidecar, "/docs/a.md.mdcat.bak"},
		{"none", fsutil.BackupModeNone, ""},
		{"unknown defaults to sidecar", fsutil.BackupMode("cloud"), "/docs/a.md.mdcat.bak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fsutil.BackupPath("/docs/a.md", tt.mode); got != tt.want {
				t.Errorf("BackupPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseBackupMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]fsutil.BackupMode{
		"":        fsutil.BackupModeSidecar,
		"sidecar": fsutil.BackupModeSidecar,
		"none":    fsutil.BackupModeNone,
	} {
		got, err := fsutil.ParseBackupMode(in)
		if err != nil {
			t.Errorf("ParseBackupMode(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseBackupMode(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := fsutil.ParseBackupMode("cloud"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCreateBackup(t *testing.T) {
	t.Parallel()

	enabled := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}

	t.Run("keeps the first version", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.md")
		if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		ctx := context.Background()

		created, err := fsutil.CreateBackup(ctx, path, enabled)
		if err != nil || !created {
			t.Fatalf("CreateBackup() = %v, %v; want true, nil", created, err)
		}

		if err := os.WriteFile(path, []byte("v2"), 0o600); err != nil {
			t.Fatalf("update: %v", err)
		}
		created, err = fsutil.CreateBackup(ctx, path, enabled)
		if err != nil || created {
			t.Fatalf("second CreateBackup() = %v, %v; want false, nil", created, err)
		}

		backup := fsutil.BackupPath(path, fsutil.BackupModeSidecar)
		got, err := os.ReadFile(backup)
		if err != nil {
			t.Fatalf("read backup: %v", err)
		}
		if string(got) != "v1" {
			t.Errorf("backup = %q, want %q", got, "v1")
		}
		stat, err := os.Stat(backup)
		if err != nil {
			t.Fatalf("stat backup: %v", err)
		}
		if stat.Mode().Perm() != 0o600 {
			t.Errorf("backup mode = %v, want 0600", stat.Mode().Perm())
		}
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.md")
		if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		for _, cfg := range []fsutil.BackupConfig{
			fsutil.DefaultBackupConfig(),
			{Enabled: true, Mode: fsutil.BackupModeNone},
		} {
			created, err := fsutil.CreateBackup(context.Background(), path, cfg)
			if err != nil || created {
				t.Errorf("CreateBackup(%+v) = %v, %v; want false, nil", cfg, created, err)
			}
		}
	})

	t.Run("missing original", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "new.md")
		created, err := fsutil.CreateBackup(context.Background(), path, enabled)
		if err != nil || created {
			t.Errorf("CreateBackup() = %v, %v; want false, nil", created, err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := fsutil.CreateBackup(ctx, "a.md", enabled); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
