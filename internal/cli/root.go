// Package cli provides the command-line interface for swatch.
package cli

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/config"
	"github.com/jmylchreest/swatch/internal/logging"
	"github.com/jmylchreest/swatch/internal/version"
)

// app holds state shared by all commands, populated before any command runs.
type app struct {
	envFile string
	verbose bool
	quiet   bool

	cfg    *config.Config
	logger hclog.Logger
}

// NewRootCmd builds the swatch command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "swatch",
		Short: "Extract colour palettes and dominant colours from images",
		Long: `Swatch extracts a colour palette or a single dominant colour from an image.

Images can be local files, directories of images, http(s) URLs, or "-" for
standard input. Defaults can be set with SWATCH_* environment variables or a
.env file; command line flags always win.`,
		Version:      version.Short(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&a.quiet, "quiet", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "read defaults from this env file (default .env if present)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newPaletteCmd(a))
	rootCmd.AddCommand(newColorCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// init loads configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Options{
		Output:  cmd.ErrOrStderr(),
		Level:   cfg.LogLevel,
		Verbose: a.verbose,
		Quiet:   a.quiet,
	})
	return nil
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
