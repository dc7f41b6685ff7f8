package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/triaged/internal/audit"
)

var (
	statsSessionID string
	statsAuditPath string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate audit log entries for a processing session",
	Long: `Read a JSONL audit log and print per-session aggregates: operation
counts, success rate, total duration, and per-stage breakdowns.

Examples:
  triaged stats --audit-log processing_log.jsonl --session 5f2b...`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsSessionID, "session", "", "session ID to aggregate")
	statsCmd.Flags().StringVar(&statsAuditPath, "audit-log", "", "JSONL audit log to read")
	_ = statsCmd.MarkFlagRequired("session")
	_ = statsCmd.MarkFlagRequired("audit-log")
}

func runStats(cmd *cobra.Command, args []string) error {
	f, err := os.Open(statsAuditPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	entries, err := audit.ReadEntries(f)
	if err != nil {
		return err
	}

	log := audit.Replay(entries, zap.NewNop())
	stats := log.SessionStats(statsSessionID)
	if stats.TotalOperations == 0 {
		return fmt.Errorf("no entries for session %s in %s", statsSessionID, statsAuditPath)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
