// Package cmd provides the CLI commands for mizan.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mizanlegal/mizan/internal/config"
	"github.com/mizanlegal/mizan/internal/logging"
	"github.com/mizanlegal/mizan/pkg/version"
)

var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root command for the mizan CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mizan",
		Short: "Hybrid retrieval engine for Arabic legal texts",
		Long: `Mizan ingests Arabic legal documents (codes, court decisions, summary
compilations), splits them into semantically coherent chunks, and serves
hybrid lexical + semantic retrieval with rank fusion and optional
LLM reranking.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "mizan.yaml", "path to the configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the config file and applies the log-level override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Setup(os.Stderr, cfg.Logging.Level)
	return cfg, nil
}
