// Package config defines the mdcat configuration types.
// These types are pure data structures; loading and layering live in
// internal/configloader.
package config

import (
	"net"
	"strconv"
	"time"
)

// OutputFormat selects how search results are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// RenderConfig controls markdown rendering.
type RenderConfig struct {
	// Style is the chroma style used for code block CSS.
	Style string `yaml:"style"`

	// GFM enables tables, strikethrough, task lists and autolinks.
	GFM bool `yaml:"gfm"`

	// HardWraps renders soft line breaks as <br>.
	HardWraps bool `yaml:"hard_wraps"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	CaseSensitive bool `yaml:"case_sensitive"`
	Regex         bool `yaml:"regex"`
}

// ServerConfig controls the live preview server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool `yaml:"metrics"`
}

// WatchConfig controls file watching.
type WatchConfig struct {
	// DebounceMS is the quiet period in milliseconds before a change is
	// applied.
	DebounceMS int `yaml:"debounce_ms"`
}

// ViewConfig controls the document views.
type ViewConfig struct {
	// Mode is the initial view mode: rendered or raw.
	Mode string `yaml:"mode"`

	// ViewportRows is the preview height used for scroll positioning.
	ViewportRows int `yaml:"viewport_rows"`
}

// BackupsConfig controls the backup taken before a document is first saved.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// Config is the root configuration structure for mdcat.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	View    ViewConfig    `yaml:"view"`
	Backups BackupsConfig `yaml:"backups"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// CLI-level options (not persisted to config files).

	// Format specifies the search output format.
	Format OutputFormat `yaml:"-"`
}

// Default values.
const (
	DefaultStyle        = "github"
	DefaultHost         = "localhost"
	DefaultPort         = 3000
	DefaultDebounceMS   = 200
	DefaultViewportRows = 40
	DefaultLogLevel     = "info"
	DefaultMode         = "rendered"
)

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Style: DefaultStyle,
			GFM:   true,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Watch: WatchConfig{DebounceMS: DefaultDebounceMS},
		View: ViewConfig{
			Mode:         DefaultMode,
			ViewportRows: DefaultViewportRows,
		},
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
		LogLevel: DefaultLogLevel,
		Format:   FormatText,
	}
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Debounce returns the watch debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
