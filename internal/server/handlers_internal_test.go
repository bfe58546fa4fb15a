package server

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithin(t *testing.T) {
	dir := filepath.FromSlash("/docs/project")

	tests := []struct {
		path string
		want bool
	}{
		{"/docs/project/img.png", true},
		{"/docs/project/assets/a/b.svg", true},
		{"/docs/project", true},
		{"/docs/project/../secret", false},
		{"/docs/projectile/x.png", false},
		{"/etc/passwd", false},
		{"relative.png", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, within(dir, filepath.FromSlash(tt.path)), tt.path)
	}
	assert.False(t, within("", "/docs/project/img.png"))
}

func TestWithin_Symlinks(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	outside := filepath.Join(root, "outside")
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "img"), 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "img", "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0o644))

	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(docs, "leak.png")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(docs, "img", "logo.png"), filepath.Join(docs, "alias.png")))

	assert.True(t, within(docs, filepath.Join(docs, "img", "logo.png")))
	assert.True(t, within(docs, filepath.Join(docs, "alias.png")), "link to a file inside the directory")
	assert.False(t, within(docs, filepath.Join(docs, "leak.png")), "link to a file outside the directory")
}

func TestSameHost(t *testing.T) {
	req := httptest.NewRequest("GET", "http://localhost:3000/ws", nil)
	assert.True(t, sameHost(req), "no origin")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, sameHost(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, sameHost(req))
}
