// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldCount      = "count"
	FieldDuration   = "duration"

	// Document fields.
	FieldLine    = "line"
	FieldMode    = "mode"
	FieldQuery   = "query"
	FieldMatches = "matches"
	FieldIndex   = "index"
	FieldBytes   = "bytes"
	FieldDirty   = "dirty"

	// Server fields.
	FieldAddr    = "addr"
	FieldClients = "clients"
	FieldMethod  = "method"
	FieldStatus  = "status"
	FieldEvent   = "event"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
