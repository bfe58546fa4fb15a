package view

import "errors"

var (
	// ErrInvalidMode indicates an unknown view mode name.
	ErrInvalidMode = errors.New("invalid view mode")

	// ErrNoDocument indicates an operation that needs an open file.
	ErrNoDocument = errors.New("no document open")

	// ErrModifiedExternally indicates the file changed on disk since it was
	// loaded and a save would overwrite those changes.
	ErrModifiedExternally = errors.New("file modified externally")

	// ErrLoopStopped indicates the event loop is no longer running.
	ErrLoopStopped = errors.New("event loop stopped")
)
