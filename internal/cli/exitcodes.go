package cli

import (
	"errors"

	"github.com/yaklabco/mdcat/pkg/fsutil"
)

// Exit codes for mdcat.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitNoMatches indicates a search found nothing.
	ExitNoMatches = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrNoMatches is returned by search when the query matched nothing.
	ErrNoMatches = errors.New("no matches")

	// ErrInvalidUsage marks bad arguments or flags.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrConfig marks configuration failures.
	ErrConfig = errors.New("configuration error")
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNoMatches):
		return ExitNoMatches
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrNoMarkdown):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
