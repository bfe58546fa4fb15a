package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdcat/internal/ui/pretty"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/fsutil"
	"github.com/yaklabco/mdcat/pkg/markdown"
)

// blockEntry is the JSON form of one block.
type blockEntry struct {
	Line  int    `json:"line"`
	Kind  string `json:"kind"`
	Depth int    `json:"depth"`
	Text  string `json:"text"`
}

func newBlocksCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "blocks PATH",
		Short: "List the block structure of a document with source lines",
		Long: `List every block the renderer produces for a document together with
the source line it is attributed to. Nested list items and blockquote
content are indented under their container. A line of "-" marks a block
that could not be located in the source.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")

	return cmd
}

func runBlocks(cmd *cobra.Command, target, format string) error {
	ctx := commandContext(cmd)

	outputFormat := config.OutputFormat(format)
	if !outputFormat.IsValid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidUsage, format)
	}

	cfg, err := loadConfig(cmd, nil)
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

	res, err := newRenderer(cfg, nil).RenderDocument(markdown.Document{
		Source:  string(content),
		BaseDir: filepath.Dir(path),
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	rows := pretty.BlockRows(res.Tokens)
	if res.Frontmatter != nil {
		rows = append([]pretty.BlockRow{{Line: 1, Kind: "frontmatter", Text: "---"}}, rows...)
	}

	out := cmd.OutOrStdout()
	if outputFormat == config.FormatJSON {
		return writeBlocksJSON(out, rows)
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	_, err = io.WriteString(out, pretty.NewTableFormatter(styles, pretty.TermWidth(out)).FormatBlocks(rows))
	return err
}

func writeBlocksJSON(out io.Writer, rows []pretty.BlockRow) error {
	entries := make([]blockEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, blockEntry(row))
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode blocks: %w", err)
	}
	return nil
}
