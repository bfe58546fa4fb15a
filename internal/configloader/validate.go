package configloader

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/fsutil"
	"github.com/yaklabco/mdcat/pkg/view"
)

// maxPort is the largest TCP port number.
const maxPort = 65535

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "server.port").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) addError(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Render.Style == "" {
		result.addError("render.style", cfg.Render.Style, "must not be empty")
	} else if !IsKnownStyle(cfg.Render.Style) {
		result.addWarning("render.style", cfg.Render.Style,
			"unknown style %q; code blocks use the fallback style", cfg.Render.Style)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > maxPort {
		result.addError("server.port", cfg.Server.Port, "must be between 0 and %d", maxPort)
	}
	if cfg.Server.Host == "" {
		result.addError("server.host", cfg.Server.Host, "must not be empty")
	}

	if cfg.Watch.DebounceMS < 0 {
		result.addError("watch.debounce_ms", cfg.Watch.DebounceMS, "must not be negative")
	}

	if _, err := view.ParseMode(cfg.View.Mode); err != nil {
		result.addError("view.mode", cfg.View.Mode, "invalid mode %q (valid: rendered, raw)", cfg.View.Mode)
	}
	if cfg.View.ViewportRows < 1 {
		result.addError("view.viewport_rows", cfg.View.ViewportRows, "must be at least 1")
	}

	if _, err := fsutil.ParseBackupMode(cfg.Backups.Mode); err != nil {
		result.addError("backups.mode", cfg.Backups.Mode, "invalid backup mode %q (valid: sidecar, none)", cfg.Backups.Mode)
	}

	if !logging.ValidLevel(cfg.LogLevel) {
		result.addError("log_level", cfg.LogLevel, "invalid level %q (valid: debug, info, warn, error)", cfg.LogLevel)
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.addError("format", cfg.Format, "invalid format %q (valid: text, json)", cfg.Format)
	}

	return result
}

// ValidateWithFile validates and tags every finding with the file it came from.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsKnownStyle reports whether chroma has a style registered under name.
func IsKnownStyle(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}
