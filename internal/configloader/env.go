package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/mdcat/pkg/config"
)

// EnvVarPrefix is the prefix for all mdcat environment variables.
const EnvVarPrefix = "MDCAT_"

// envVar binds one environment variable to a config field.
type envVar struct {
	description string
	apply       func(cfg *config.Config, value string) error
}

func stringVar(desc string, field func(*config.Config) *string) envVar {
	return envVar{description: desc, apply: func(cfg *config.Config, value string) error {
		*field(cfg) = value
		return nil
	}}
}

func boolVar(desc string, field func(*config.Config) *bool) envVar {
	return envVar{description: desc, apply: func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
		*field(cfg) = b
		return nil
	}}
}

func intVar(desc string, field func(*config.Config) *int) envVar {
	return envVar{description: desc, apply: func(cfg *config.Config, value string) error {
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		*field(cfg) = i
		return nil
	}}
}

// envVars maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = map[string]envVar{
	"RENDER_STYLE":          stringVar("Chroma style for code blocks", func(c *config.Config) *string { return &c.Render.Style }),
	"RENDER_GFM":            boolVar("Enable GitHub Flavored Markdown: true or false", func(c *config.Config) *bool { return &c.Render.GFM }),
	"RENDER_HARD_WRAPS":     boolVar("Render soft line breaks as <br>: true or false", func(c *config.Config) *bool { return &c.Render.HardWraps }),
	"SEARCH_CASE_SENSITIVE": boolVar("Case-sensitive search: true or false", func(c *config.Config) *bool { return &c.Search.CaseSensitive }),
	"SEARCH_REGEX":          boolVar("Treat queries as regular expressions: true or false", func(c *config.Config) *bool { return &c.Search.Regex }),
	"SERVER_HOST":           stringVar("Preview server host", func(c *config.Config) *string { return &c.Server.Host }),
	"SERVER_PORT":           intVar("Preview server port", func(c *config.Config) *int { return &c.Server.Port }),
	"SERVER_METRICS":        boolVar("Serve Prometheus metrics: true or false", func(c *config.Config) *bool { return &c.Server.Metrics }),
	"WATCH_DEBOUNCE_MS":     intVar("Debounce for file changes in milliseconds", func(c *config.Config) *int { return &c.Watch.DebounceMS }),
	"VIEW_MODE":             stringVar("Initial view mode: rendered or raw", func(c *config.Config) *string { return &c.View.Mode }),
	"VIEW_VIEWPORT_ROWS":    intVar("Preview viewport height in rows", func(c *config.Config) *int { return &c.View.ViewportRows }),
	"BACKUPS_ENABLED":       boolVar("Back up a document before its first save: true or false", func(c *config.Config) *bool { return &c.Backups.Enabled }),
	"BACKUPS_MODE":          stringVar("Backup mode: sidecar or none", func(c *config.Config) *string { return &c.Backups.Mode }),
	"LOG_LEVEL":             stringVar("Log level: debug, info, warn or error", func(c *config.Config) *string { return &c.LogLevel }),
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Empty variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvSuffixes() {
		name := EnvVarPrefix + suffix
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}
		if err := envVars[suffix].apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// ListEnvVars returns every supported environment variable with its
// description.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envVars))
	for suffix, v := range envVars {
		out[EnvVarPrefix+suffix] = v.description
	}
	return out
}

func sortedEnvSuffixes() []string {
	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
