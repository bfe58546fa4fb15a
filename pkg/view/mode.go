// Package view holds the document view state and the controllers that keep
// the rendered and raw views in step with it.
package view

import "fmt"

// Mode is the active view of a document.
type Mode uint8

// View modes. The zero value is the initial mode.
const (
	ModeRendered Mode = iota
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "rendered"
}

// Toggled returns the other mode.
func (m Mode) Toggled() Mode {
	if m == ModeRaw {
		return ModeRendered
	}
	return ModeRaw
}

// ParseMode parses "rendered" or "raw". "preview" is accepted as an alias
// for "rendered".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "rendered", "preview":
		return ModeRendered, nil
	case "raw":
		return ModeRaw, nil
	default:
		return ModeRendered, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
