// Package main implements the triaged CLI for running the feedback triage
// pipeline and managing its configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/triaged/internal/config"
	"github.com/fyrsmithlabs/triaged/internal/logging"
)

var (
	// configPath locates the persisted configuration store.
	configPath string
	// logLevel and logFormat configure the process logger.
	logLevel  string
	logFormat string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "triaged",
	Short: "Deterministic feedback triage pipeline",
	Long: `triaged classifies raw user feedback, analyzes bugs and feature
requests, scores priority, extracts technical details, and assembles
quality-reviewed tickets. Every stage decision is recorded in an
append-only audit log.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "triage_config.yaml", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (json or console)")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
}

// newLogger builds the process logger from the persistent flags.
func newLogger() (*zap.Logger, error) {
	logger, err := logging.New(logging.Config{Level: logLevel, Format: logFormat})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// openStore opens the configuration store at the configured path.
func openStore(logger *zap.Logger) (*config.Store, error) {
	store, err := config.Open(configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	return store, nil
}
