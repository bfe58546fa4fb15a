package cli

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdcat/internal/configloader"
	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/fsutil"
	"github.com/yaklabco/mdcat/pkg/markdown"
)

// renderFlags holds the flags for the render command.
type renderFlags struct {
	output     string
	standalone bool
	baseDir    string
	style      string
	hardWraps  bool
	noGFM      bool
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render PATH",
		Short: "Render a Markdown document to line-annotated HTML",
		Long: `Render a Markdown document to HTML. Every block element carries a
data-source-line attribute holding the 1-based line of the source it was
rendered from. A leading "---" frontmatter block is shown as a preformatted
block and does not shift the line numbers of the body.

Examples:
  mdcat render README.md                  Print the HTML fragment
  mdcat render docs/ --standalone         Full page for the docs entry file
  mdcat render README.md -o out.html      Write to a file`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write HTML to file instead of stdout")
	cmd.Flags().BoolVar(&flags.standalone, "standalone", false, "emit a complete HTML page with styles")
	cmd.Flags().StringVar(&flags.baseDir, "base-dir", "", "directory relative images resolve against (default: document directory)")
	cmd.Flags().StringVar(&flags.style, "style", "", "chroma style for code blocks")
	cmd.Flags().BoolVar(&flags.hardWraps, "hard-wraps", false, "render soft line breaks as <br>")
	cmd.Flags().BoolVar(&flags.noGFM, "no-gfm", false, "disable GitHub Flavored Markdown extensions")

	return cmd
}

func runRender(cmd *cobra.Command, target string, flags *renderFlags) error {
	ctx := commandContext(cmd)
	logger := logging.Default()

	cfg, err := loadConfig(cmd, &configloader.Overrides{
		Style:     flagOverride(cmd, "style", flags.style),
		HardWraps: flagOverride(cmd, "hard-wraps", flags.hardWraps),
		GFM:       flagOverride(cmd, "no-gfm", !flags.noGFM),
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

	baseDir := flags.baseDir
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}

	renderer := newRenderer(cfg, markdown.FileURLResolver{})
	res, err := renderer.RenderDocument(markdown.Document{Source: string(content), BaseDir: baseDir})
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if res.Unattributed > 0 {
		logger.Debug("blocks without source line", logging.FieldPath, path, logging.FieldCount, res.Unattributed)
	}

	out := []byte(res.HTML)
	if flags.standalone {
		out, err = standalonePage(renderer, res)
		if err != nil {
			return err
		}
	}

	if flags.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	changed, err := fsutil.WriteAtomicIfChanged(ctx, flags.output, out, 0)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("wrote", logging.FieldOutput, flags.output, logging.FieldBytes, len(out))
	} else {
		logger.Debug("output unchanged", logging.FieldOutput, flags.output)
	}
	return nil
}

// newRenderer builds a renderer from the render section of cfg.
func newRenderer(cfg *config.Config, assets markdown.AssetResolver) *markdown.Renderer {
	opts := markdown.DefaultOptions()
	opts.Style = cfg.Render.Style
	opts.GFM = cfg.Render.GFM
	opts.HardWraps = cfg.Render.HardWraps
	opts.Assets = assets
	return markdown.New(opts)
}

// standalonePage wraps a rendered fragment in a complete document.
func standalonePage(renderer *markdown.Renderer, res *markdown.Result) ([]byte, error) {
	var css bytes.Buffer
	if err := renderer.WriteCSS(&css); err != nil {
		return nil, fmt.Errorf("write stylesheet: %w", err)
	}

	title := res.Title
	if title == "" {
		title = "mdcat"
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n",
		html.EscapeString(title))
	fmt.Fprintf(&page, "<style>\n%s</style>\n</head>\n<body>\n<article class=\"markdown-body\">\n", css.String())
	page.WriteString(res.HTML)
	page.WriteString("\n</article>\n</body>\n</html>\n")
	return page.Bytes(), nil
}
