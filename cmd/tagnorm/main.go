// Command tagnorm normalizes free-text tags to canonical identifiers. It
// serves the HTTP and MCP APIs, imports alias dictionaries from public
// sources, and offers the normalizer on the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// app is the state shared by every subcommand, filled in PersistentPreRunE.
type app struct {
	cfgFile  string
	logLevel string

	cfg    *config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tagnorm",
		Short:         "Normalize free-text tags to canonical identifiers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.cfgFile)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newServeCmd(a),
		newNormalizeCmd(a),
		newSimilarCmd(a),
		newAliasesCmd(a),
		newPrepareCmd(a),
		newImportCmd(a),
		newSourcesCmd(a),
		newCallCmd(a),
	)
	return root
}
