package configloader

import "github.com/yaklabco/mdcat/pkg/config"

// Overrides carries command-line flag values. A nil field means the flag
// was not given and the layered value stands.
type Overrides struct {
	Style         *string
	GFM           *bool
	HardWraps     *bool
	CaseSensitive *bool
	Regex         *bool
	Host          *string
	Port          *int
	Metrics       *bool
	Mode          *string
	LogLevel      *string
	Format        *config.OutputFormat
}

// apply writes every set override onto cfg.
func (o *Overrides) apply(cfg *config.Config) {
	if o == nil {
		return
	}
	set(&cfg.Render.Style, o.Style)
	set(&cfg.Render.GFM, o.GFM)
	set(&cfg.Render.HardWraps, o.HardWraps)
	set(&cfg.Search.CaseSensitive, o.CaseSensitive)
	set(&cfg.Search.Regex, o.Regex)
	set(&cfg.Server.Host, o.Host)
	set(&cfg.Server.Port, o.Port)
	set(&cfg.Server.Metrics, o.Metrics)
	set(&cfg.View.Mode, o.Mode)
	set(&cfg.LogLevel, o.LogLevel)
	set(&cfg.Format, o.Format)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
