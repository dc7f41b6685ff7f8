package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/triaged/internal/config"
	"github.com/fyrsmithlabs/triaged/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify the triage configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration as JSON",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <section> <field>=<value> [<field>=<value>...]",
	Short: "Update fields in one configuration section",
	Long: `Update configuration fields. The candidate is validated before it is
persisted; a hard validation issue rejects the whole update.

Examples:
  triaged config set classification_thresholds bug_threshold=0.8
  triaged config set agent_settings enable_quality_review=false
  triaged config set processing_rules batch_size=20 skip_low_confidence_items=true`,
	Args: cobra.MinimumNArgs(2),
	RunE: runConfigSet,
}

var configExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the current configuration to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigExport,
}

var configImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a configuration file, backing up the current one",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigImport,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	RunE:  runConfigReset,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configResetCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	store, closeFn, err := quietStore()
	if err != nil {
		return err
	}
	defer closeFn()

	report := store.Validate()
	for _, w := range report.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
	}
	if !report.Valid {
		for _, issue := range report.Issues {
			fmt.Fprintf(cmd.OutOrStdout(), "issue: %s\n", issue)
		}
		return fmt.Errorf("configuration invalid (%d issues)", len(report.Issues))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	store, closeFn, err := quietStore()
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := json.MarshalIndent(store.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, closeFn, err := quietStore()
	if err != nil {
		return err
	}
	defer closeFn()

	section := args[0]
	fields := make(map[string]any, len(args)-1)
	for _, arg := range args[1:] {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("expected <field>=<value>, got %q", arg)
		}
		fields[name] = parseValue(raw)
	}

	if err := store.Update(section, fields); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%d fields)\n", section, len(fields))
	return nil
}

// parseValue coerces a flag value into the most specific type the store
// understands. Numbers are tried before bools so "1" stays numeric; the
// store coerces numerics into bool fields itself. Unparseable values pass
// through as strings.
func parseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func runConfigExport(cmd *cobra.Command, args []string) error {
	store, closeFn, err := quietStore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Export(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", args[0])
	return nil
}

func runConfigImport(cmd *cobra.Command, args []string) error {
	store, closeFn, err := quietStore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Import(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %s (previous config backed up to %s.backup)\n",
		args[0], store.Path())
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	store, closeFn, err := quietStore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "configuration reset to defaults")
	return nil
}

// quietStore opens the store with the configured logger and returns a close
// function that flushes the logger.
func quietStore() (*config.Store, func(), error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore(logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { logging.Sync(logger) }, nil
}
