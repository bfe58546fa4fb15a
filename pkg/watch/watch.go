// Package watch reports changes to a single file, coalescing bursts of
// filesystem events into one notification.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/mdcat/internal/logging"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned when watching with a closed Watcher.
var ErrClosed = errors.New("watcher closed")

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event. Defaults to
	// DefaultDebounce.
	Debounce time.Duration

	Logger *log.Logger
}

// Watcher watches one file. Editors that save by writing a temporary file
// and renaming it over the original are handled by watching the parent
// directory and filtering on the file name.
type Watcher struct {
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	closed  bool
	stopped sync.WaitGroup
}

// New creates a watcher.
func New(opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Watcher{
		debounce: opts.Debounce,
		logger:   opts.Logger,
		done:     make(chan struct{}),
	}
}

// Watch starts reporting changes to path. onChange runs on a timer
// goroutine once per burst of events. Watching stops when ctx is done or
// Close is called.
func (w *Watcher) Watch(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.fsw != nil {
		return fmt.Errorf("watch %s: already watching", abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	w.fsw = fsw

	w.stopped.Add(1)
	go w.run(ctx, fsw, abs, onChange)

	w.logger.Debug("watching file", logging.FieldPath, abs)
	return nil
}

// Close stops watching and waits for the event goroutine to exit. A
// pending notification is dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
	}
	fsw := w.fsw
	w.mu.Unlock()

	w.stopped.Wait()
	if fsw != nil {
		if err := fsw.Close(); err != nil {
			return fmt.Errorf("close watcher: %w", err)
		}
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, path string, onChange func()) {
	defer w.stopped.Done()

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || !relevant(event) {
				continue
			}
			w.logger.Debug("file event", logging.FieldPath, path, logging.FieldEvent, event.Op.String())
			w.schedule(onChange)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", logging.FieldPath, path, logging.FieldError, err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) ||
		event.Has(fsnotify.Remove)
}

func (w *Watcher) schedule(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, onChange)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
