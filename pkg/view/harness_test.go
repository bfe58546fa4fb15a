package view_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/markdown"
	"github.com/yaklabco/mdcat/pkg/view"
)

// doc has navigable blocks at lines 1, 3, 5, 7, 8, 10 and 12.
const doc = `# Title

Intro paragraph with a needle.

## Section

- one needle
- two

Closing text.

Needle again.
`

type harness struct {
	path    string
	store   *view.Store
	loop    *view.Loop
	preview *view.Preview
	editor  *view.MemoryEditor
	ctrl    *view.Controller
}

func newHarness(t *testing.T, content string) *harness {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts := markdown.DefaultOptions()
	opts.Logger = logging.Discard()

	h := &harness{path: path, store: view.NewStore(), loop: view.NewLoop()}
	h.preview = view.NewPreview(h.store, h.loop, markdown.New(opts), view.PreviewOptions{
		Rows:   4,
		Logger: logging.Discard(),
	})
	h.editor = view.NewMemoryEditor(4)
	h.ctrl = view.NewController(h.store, h.loop, h.preview, h.editor, view.ControllerOptions{
		Logger: logging.Discard(),
	})

	require.NoError(t, h.ctrl.Open(context.Background(), path))
	h.loop.Drain()
	return h
}
