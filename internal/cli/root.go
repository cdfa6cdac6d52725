// Package cli implements the compliancelens command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/compliancelens/backend/config"
	"github.com/compliancelens/backend/internal/logging"
)

// app carries state shared by subcommands once the root has loaded configuration
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCommand builds the full command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "compliancelens",
		Short:         "Retail product compliance classifier",
		Long:          "ComplianceLens derives features from retail product records, fits a compliance model and serves classifications over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default searches ./config.yaml, ./config, /etc/compliancelens)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newServeCommand(a),
		newFitCommand(a),
		newClassifyCommand(a),
		newBundlesCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	// Logs go to stderr so command output on stdout stays machine-readable
	if _, err := logging.SetupTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}
