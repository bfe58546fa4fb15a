package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdcat/internal/configloader"
	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/internal/metrics"
	"github.com/yaklabco/mdcat/internal/server"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/fsutil"
	"github.com/yaklabco/mdcat/pkg/markdown"
	"github.com/yaklabco/mdcat/pkg/view"
)

// serveFlags holds the flags for the serve command.
type serveFlags struct {
	host    string
	port    int
	noWatch bool
	metrics bool
	mode    string
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve PATH",
		Short: "Serve a live preview of a Markdown document",
		Long: `Serve a live preview of a Markdown document in the browser. The page
switches between the rendered view and the raw source while keeping the
same source line in view, highlights search matches in both, and saves
edits back to disk. Changes made to the file by other programs are picked
up unless there are unsaved edits.

Examples:
  mdcat serve README.md
  mdcat serve docs/ --port 8080 --metrics
  mdcat serve notes.md --mode raw --no-watch`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", config.DefaultHost, "interface to listen on")
	cmd.Flags().IntVarP(&flags.port, "port", "p", config.DefaultPort, "port to listen on (0 picks a free port)")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not reload when the file changes on disk")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "expose Prometheus metrics at /metrics")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "initial view: rendered or raw")

	return cmd
}

func runServe(cmd *cobra.Command, target string, flags *serveFlags) error {
	cfg, err := loadConfig(cmd, &configloader.Overrides{
		Host:    flagOverride(cmd, "host", flags.host),
		Port:    flagOverride(cmd, "port", flags.port),
		Metrics: flagOverride(cmd, "metrics", flags.metrics),
		Mode:    flagOverride(cmd, "mode", flags.mode),
	})
	if err != nil {
		return err
	}

	path, err := fsutil.ResolveDocument(target)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewServer(levelName(cmd, cfg))
	ctx = logging.WithLogger(ctx, logger)

	srv, err := buildServer(ctx, cfg, path, !flags.noWatch, logger)
	if err != nil {
		return err
	}

	err = srv.ListenAndServe(ctx, cfg.Addr())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}

// buildServer opens path in a fresh view stack and wraps it in a preview
// server configured from cfg.
func buildServer(
	ctx context.Context,
	cfg *config.Config,
	path string,
	watchFile bool,
	logger *log.Logger,
) (*server.Server, error) {
	mode, err := view.ParseMode(cfg.View.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	backupMode, err := fsutil.ParseBackupMode(cfg.Backups.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	var m *metrics.Metrics
	if cfg.Server.Metrics {
		m = metrics.New()
	}

	renderer := newRenderer(cfg, markdown.PrefixResolver{Prefix: server.AssetPrefix})
	var css bytes.Buffer
	if err := renderer.WriteCSS(&css); err != nil {
		return nil, fmt.Errorf("write stylesheet: %w", err)
	}

	store := view.NewStore()
	loop := view.NewLoop()
	preview := view.NewPreview(store, loop, server.InstrumentRenderer(renderer, m), view.PreviewOptions{
		Rows:   cfg.View.ViewportRows,
		Logger: logger,
	})
	ctrl := view.NewController(store, loop, preview, view.NewMemoryEditor(cfg.View.ViewportRows), view.ControllerOptions{
		Backup: fsutil.BackupConfig{Enabled: cfg.Backups.Enabled, Mode: backupMode},
		Logger: logger,
	})

	if err := ctrl.Open(ctx, path); err != nil {
		return nil, err
	}
	store.SetMode(mode)
	store.SetSearch(view.SearchPatch{CaseSensitive: view.Ptr(cfg.Search.CaseSensitive)})
	loop.Drain()

	return server.New(ctrl, loop, server.Options{
		Stylesheet: css.String(),
		Watch:      watchFile,
		Debounce:   cfg.Debounce(),
		Metrics:    m,
		Logger:     logger,
	}), nil
}

// levelName returns the effective log level for long-running output.
func levelName(cmd *cobra.Command, cfg *config.Config) string {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return "debug"
	}
	return cfg.LogLevel
}
