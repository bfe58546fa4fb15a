package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdcat/internal/configloader"
	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/internal/ui/pretty"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/fsutil"
	"github.com/yaklabco/mdcat/pkg/search"
)

// searchFlags holds the flags for the search command.
type searchFlags struct {
	caseSensitive bool
	regex         bool
	format        string
	context       bool
	summary       bool
}

// searchReport is the JSON form of a search.
type searchReport struct {
	Path          string        `json:"path"`
	Query         string        `json:"query"`
	CaseSensitive bool          `json:"caseSensitive"`
	Regex         bool          `json:"regex"`
	Total         int           `json:"total"`
	Matches       []searchMatch `json:"matches"`
}

type searchMatch struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
}

func newSearchCommand() *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search PATH QUERY",
		Short: "Find every occurrence of a query in a Markdown document",
		Long: `Search the raw source of a Markdown document. Queries are literal and
case-insensitive unless --case-sensitive or --regex is given. Matches never
overlap and are reported in document order with their 1-based line.

Exits with status 1 when nothing matched.

Examples:
  mdcat search README.md install
  mdcat search notes.md 'TODO|FIXME' --regex
  mdcat search README.md Go --case-sensitive --format json`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.caseSensitive, "case-sensitive", "s", false, "match case exactly")
	cmd.Flags().BoolVarP(&flags.regex, "regex", "e", false, "treat QUERY as a regular expression")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "output format: text, json")
	cmd.Flags().BoolVarP(&flags.context, "context", "C", false, "show a caret line under each match")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a detailed summary block")

	return cmd
}

func runSearch(cmd *cobra.Command, target, query string, flags *searchFlags) error {
	ctx := commandContext(cmd)
	logger := logging.Default()

	format := config.OutputFormat(flags.format)
	if !format.IsValid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidUsage, flags.format)
	}

	cfg, err := loadConfig(cmd, &configloader.Overrides{
		CaseSensitive: flagOverride(cmd, "case-sensitive", flags.caseSensitive),
		Regex:         flagOverride(cmd, "regex", flags.regex),
		Format:        &format,
	})
	if err != nil {
		return err
	}

	path, err := fsutil.ResolveDocument(target)
	if err != nil {
		return err
	}
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	text := string(content)

	opts := search.Options{CaseSensitive: cfg.Search.CaseSensitive, Regex: cfg.Search.Regex}
	if opts.Regex && search.Compile(query, opts) == nil {
		return fmt.Errorf("%w: invalid pattern %q", ErrInvalidUsage, query)
	}
	matches := search.FindMatches(text, query, opts)
	logger.Debug("searched", logging.FieldPath, path, logging.FieldQuery, query, logging.FieldMatches, len(matches))

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case config.FormatJSON:
		err = writeSearchJSON(out, path, query, text, opts, matches)
	default:
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
		err = writeSearchText(out, styles, path, query, text, opts, matches, flags)
	}
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		return ErrNoMatches
	}
	return nil
}

func writeSearchText(
	out io.Writer,
	styles *pretty.Styles,
	path, query, text string,
	opts search.Options,
	matches []search.Match,
	flags *searchFlags,
) error {
	stats := pretty.SearchStats{
		Path:          path,
		Query:         query,
		Matches:       len(matches),
		Lines:         distinctLines(matches),
		CaseSensitive: opts.CaseSensitive,
		Regex:         opts.Regex,
	}

	if len(matches) > 0 {
		if _, err := io.WriteString(out, styles.FormatFileHeader(path, len(matches))+"\n"); err != nil {
			return err
		}
		for _, m := range matches {
			if _, err := io.WriteString(out, styles.FormatMatch(path, text, m, flags.context)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}

	summary := styles.FormatSummaryOneLine(stats)
	if flags.summary {
		summary = styles.FormatSummary(stats)
	}
	_, err := io.WriteString(out, summary)
	return err
}

func writeSearchJSON(out io.Writer, path, query, text string, opts search.Options, matches []search.Match) error {
	report := searchReport{
		Path:          path,
		Query:         query,
		CaseSensitive: opts.CaseSensitive,
		Regex:         opts.Regex,
		Total:         len(matches),
		Matches:       make([]searchMatch, 0, len(matches)),
	}
	for _, m := range matches {
		report.Matches = append(report.Matches, searchMatch{
			Line:   m.Line,
			Column: m.Column(text),
			Start:  m.Start,
			End:    m.End,
			Text:   m.Text(text),
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// distinctLines counts the lines holding at least one match.
func distinctLines(matches []search.Match) int {
	count, last := 0, 0
	for _, m := range matches {
		if m.Line != last {
			count++
			last = m.Line
		}
	}
	return count
}
