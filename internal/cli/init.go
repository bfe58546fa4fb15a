package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/fsutil"
)

// defaultConfigFile is the file written by init without --output.
const defaultConfigFile = ".mdcat.yml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter mdcat configuration file",
		Long: `Create a .mdcat.yml configuration file in the current directory. Every
setting is listed with its default value and a short explanation.

Examples:
  mdcat init                       Create .mdcat.yml
  mdcat init --output ~/.config/mdcat/config.yaml
  mdcat init --force               Overwrite an existing file`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigFile, "output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewWriter(cmd.ErrOrStderr(), "info")

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrInvalidUsage, flags.output)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := fsutil.WriteAtomic(commandContext(cmd), absPath, []byte(config.Template), fsutil.DefaultFileMode); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'mdcat serve PATH' to preview a document with these settings")
	return nil
}
