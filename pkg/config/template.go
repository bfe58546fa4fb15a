package config

// Template is the annotated starter file written by "mdcat init". Every
// value shown is the default.
const Template = `# mdcat configuration
# Precedence, lowest to highest: defaults, /etc/mdcat/config.yaml,
# $XDG_CONFIG_HOME/mdcat/config.yaml, this file, --config, MDCAT_* env, flags.

render:
  # Chroma style for code blocks (github, monokai, dracula, ...)
  style: github
  # Tables, strikethrough, task lists and autolinks
  gfm: true
  # Render single newlines as <br>
  hard_wraps: false

search:
  case_sensitive: false
  # Treat queries as regular expressions
  regex: false

server:
  host: localhost
  port: 3000
  # Serve Prometheus metrics at /metrics
  metrics: false

watch:
  # Quiet period before a change on disk is applied
  debounce_ms: 200

view:
  # Initial mode: rendered or raw
  mode: rendered
  viewport_rows: 40

backups:
  # Keep a copy of the original before the first save
  enabled: false
  # sidecar (file.md.mdcat.bak) or none
  mode: sidecar

# debug, info, warn or error
log_level: info
`
