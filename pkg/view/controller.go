package view

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/diff"
	"github.com/yaklabco/mdcat/pkg/fsutil"
)

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// Backup controls the copy taken before the first save over a file.
	Backup fsutil.BackupConfig

	Logger *log.Logger
}

// Controller coordinates the two views of one document: it opens and saves
// the file, moves between rendered and raw mode while keeping the visible
// source line, and routes search navigation to the active view.
type Controller struct {
	store   *Store
	loop    *Loop
	preview *Preview
	editor  Editor
	search  *Search
	backup  fsutil.BackupConfig
	logger  *log.Logger

	mu      sync.Mutex
	info    *fsutil.FileInfo
	gen     int
	pending *int
}

// NewController wires a controller to its views. preview may be nil for a
// headless controller.
func NewController(store *Store, loop *Loop, preview *Preview, editor Editor, opts ControllerOptions) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	c := &Controller{
		store:   store,
		loop:    loop,
		preview: preview,
		editor:  editor,
		backup:  opts.Backup,
		logger:  opts.Logger,
	}
	c.search = NewSearch(store, loop, c.NavigateToLine)
	store.Subscribe(c.syncEditor)
	return c
}

// Store returns the state store.
func (c *Controller) Store() *Store {
	return c.store
}

// Preview returns the rendered view.
func (c *Controller) Preview() *Preview {
	return c.preview
}

// Editor returns the raw view.
func (c *Controller) Editor() Editor {
	return c.editor
}

// Search returns the search controller.
func (c *Controller) Search() *Search {
	return c.search
}

// Open reads path and makes it the current document.
func (c *Controller) Open(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	content, info, err := fsutil.ReadFile(ctx, abs)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}

	c.mu.Lock()
	c.info = info
	c.mu.Unlock()

	c.store.SetFile(abs, string(content))
	c.logger.Debug("opened document", logging.FieldPath, abs, logging.FieldBytes, len(content))
	return nil
}

// Edit records content typed into the raw view.
func (c *Controller) Edit(content string) {
	if c.editor.Content() != content {
		c.editor.SetContent(content)
	}
	c.store.SetContent(content)
}

// Reload re-reads the file after an external change. Unsaved edits win:
// the reload is ignored while the document is dirty. It reports whether
// the content was replaced.
func (c *Controller) Reload(ctx context.Context) (bool, error) {
	st := c.store.State()
	if !st.HasDocument() {
		return false, ErrNoDocument
	}

	content, info, err := fsutil.ReadFile(ctx, st.FilePath)
	if err != nil {
		return false, fmt.Errorf("reload document: %w", err)
	}

	if st.Dirty {
		c.logger.Debug("ignoring external change to dirty document", logging.FieldPath, st.FilePath)
		return false, nil
	}

	c.mu.Lock()
	c.info = info
	c.mu.Unlock()

	return c.store.ApplyExternalUpdate(string(content)), nil
}

// Save writes the content atomically and marks the document clean. It
// refuses to overwrite a file that changed on disk since it was read.
func (c *Controller) Save(ctx context.Context) error {
	st := c.store.State()
	if !st.HasDocument() {
		return ErrNoDocument
	}

	c.mu.Lock()
	info := c.info
	c.mu.Unlock()

	mode := fsutil.DefaultFileMode
	if info != nil {
		modified, err := fsutil.CheckModified(ctx, info)
		if err != nil {
			return fmt.Errorf("save %s: %w", st.FilePath, err)
		}
		if modified {
			return fmt.Errorf("save %s: %w", st.FilePath, ErrModifiedExternally)
		}
		mode = info.Mode.Perm()
	}

	if _, err := fsutil.CreateBackup(ctx, st.FilePath, c.backup); err != nil {
		return fmt.Errorf("save %s: %w", st.FilePath, err)
	}
	if err := fsutil.WriteAtomic(ctx, st.FilePath, []byte(st.Content), mode); err != nil {
		return fmt.Errorf("save %s: %w", st.FilePath, err)
	}

	_, info, err := fsutil.ReadFile(ctx, st.FilePath)
	if err != nil {
		return fmt.Errorf("save %s: %w", st.FilePath, err)
	}
	c.mu.Lock()
	c.info = info
	c.mu.Unlock()

	if c.store.State().Content == st.Content {
		c.store.MarkClean()
	}
	c.logger.Info("saved document", logging.FieldPath, st.FilePath, logging.FieldBytes, len(st.Content))
	return nil
}

// Diff compares the file on disk with the current content. It returns nil
// when they match.
func (c *Controller) Diff(ctx context.Context) (*diff.Diff, error) {
	st := c.store.State()
	if !st.HasDocument() {
		return nil, ErrNoDocument
	}

	disk, _, err := fsutil.ReadFile(ctx, st.FilePath)
	if err != nil {
		return nil, fmt.Errorf("diff document: %w", err)
	}
	return diff.Compute(filepath.Base(st.FilePath), string(disk), st.Content), nil
}

// VisibleLine returns the source line visible in the active view.
func (c *Controller) VisibleLine() int {
	return c.visibleLine(c.store.State().Mode)
}

// ToggleModeWithSync flips the view mode and, once the newly shown view
// has completed its render pass, positions it at the source line that was
// visible before the flip.
func (c *Controller) ToggleModeWithSync() Mode {
	from := c.store.State().Mode

	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()

	// An unpositioned view reports its target line, not its scroll state.
	var line int
	if pending != nil {
		line = *pending
	} else {
		line = c.visibleLine(from)
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.pending = &line
	c.mu.Unlock()

	mode := c.store.ToggleMode()
	c.logger.Debug("toggled view mode", logging.FieldMode, mode, logging.FieldLine, line)

	c.afterRender(func() {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.pending = nil
		c.mu.Unlock()
		c.NavigateToLine(line)
	})
	return mode
}

// NavigateToLine positions the active view at line.
func (c *Controller) NavigateToLine(line int) {
	if c.store.State().Mode == ModeRaw {
		c.editor.GoToLine(line, false)
		return
	}
	if c.preview != nil {
		c.preview.ScrollToLine(line)
	}
}

func (c *Controller) visibleLine(mode Mode) int {
	if mode == ModeRaw {
		return c.editor.VisibleLine()
	}
	if c.preview == nil {
		return 1
	}
	return c.preview.VisibleLine()
}

// afterRender runs fn two loop turns from now: the first turn lets the
// pass scheduled by a state change run, the second observes its result.
func (c *Controller) afterRender(fn func()) {
	c.loop.Post(func() {
		c.loop.Post(fn)
	})
}

func (c *Controller) syncEditor(st State) {
	if st.Dirty {
		return
	}
	if c.editor.Content() != st.Content {
		c.editor.SetContent(st.Content)
	}
}
