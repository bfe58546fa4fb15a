package pretty

import (
	"fmt"
	"strconv"
	"strings"
)

const summaryDividerWidth = 40

// SearchStats summarizes one search run.
type SearchStats struct {
	Path          string
	Query         string
	Matches       int
	Lines         int
	CaseSensitive bool
	Regex         bool
}

// FormatSummaryOneLine formats search statistics as a single line.
// Example: "3 matches on 2 lines in README.md".
func (s *Styles) FormatSummaryOneLine(stats SearchStats) string {
	if stats.Matches == 0 {
		return s.Failure.Render("No matches") + s.Dim.Render(fmt.Sprintf(" for %q in %s", stats.Query, stats.Path)) + "\n"
	}

	return fmt.Sprintf("%s on %d %s in %s\n",
		s.Success.Render(fmt.Sprintf("%d %s", stats.Matches, plural(stats.Matches, "match", "matches"))),
		stats.Lines, plural(stats.Lines, "line", "lines"),
		s.FilePath.Render(stats.Path),
	)
}

// FormatSummary formats search statistics as a summary block.
func (s *Styles) FormatSummary(stats SearchStats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  File:              " + s.SummaryValue.Render(stats.Path) + "\n")
	builder.WriteString("  Query:             " + s.SummaryValue.Render(strconv.Quote(stats.Query)) + "\n")
	builder.WriteString("  Case sensitive:    " + s.SummaryValue.Render(strconv.FormatBool(stats.CaseSensitive)) + "\n")
	builder.WriteString("  Pattern:           " + s.SummaryValue.Render(strconv.FormatBool(stats.Regex)) + "\n")
	builder.WriteString("\n")

	if stats.Matches == 0 {
		builder.WriteString("  Matches:           " + s.Failure.Render("0") + "\n")
	} else {
		builder.WriteString("  Matches:           " + s.Success.Render(strconv.Itoa(stats.Matches)) + "\n")
		builder.WriteString("  Lines:             " + s.SummaryValue.Render(strconv.Itoa(stats.Lines)) + "\n")
	}

	return builder.String()
}
