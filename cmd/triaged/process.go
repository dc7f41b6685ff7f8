package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/triaged/internal/audit"
	"github.com/fyrsmithlabs/triaged/internal/classify"
	"github.com/fyrsmithlabs/triaged/internal/feedback"
	"github.com/fyrsmithlabs/triaged/internal/logging"
	"github.com/fyrsmithlabs/triaged/internal/pipeline"
)

var (
	inputPath          string
	outputPath         string
	auditLogPath       string
	classifierProvider string
	llmModel           string
	watchConfig        bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Triage a batch of feedback items",
	Long: `Read feedback items as JSON lines, run the triage pipeline, and write
the resulting tickets as JSON lines.

Examples:
  # Triage a batch with the default rule classifier
  triaged process --input feedback.jsonl --output tickets.jsonl

  # Keep a decision audit trail
  triaged process --input feedback.jsonl --output tickets.jsonl --audit-log processing_log.jsonl

  # Use the LLM classifier (falls back to rules on any error)
  ANTHROPIC_API_KEY=... triaged process --classifier anthropic --input feedback.jsonl --output -`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&inputPath, "input", "", "feedback JSONL file, or - for stdin")
	processCmd.Flags().StringVar(&outputPath, "output", "-", "ticket JSONL file, or - for stdout")
	processCmd.Flags().StringVar(&auditLogPath, "audit-log", "", "append decision audit entries to this JSONL file")
	processCmd.Flags().StringVar(&classifierProvider, "classifier", "rule", "classifier provider (rule or anthropic)")
	processCmd.Flags().StringVar(&llmModel, "model", "", "override the LLM classifier model")
	processCmd.Flags().BoolVar(&watchConfig, "watch-config", false, "reload the config file on change during processing")
	_ = processCmd.MarkFlagRequired("input")
}

func runProcess(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	store, err := openStore(logger)
	if err != nil {
		return err
	}
	if report := store.Validate(); !report.Valid {
		return fmt.Errorf("configuration invalid: %v", report.Issues)
	}

	items, err := readItems(inputPath)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no feedback items in %s", inputPath)
	}

	log, closeLog, err := openAuditLog(auditLogPath, logger)
	if err != nil {
		return err
	}
	defer closeLog()

	classifier, err := classify.New(classify.Config{
		Provider: classifierProvider,
		LLM: classify.LLMConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  llmModel,
		},
	}, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if watchConfig {
		go func() {
			if err := store.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	orch := pipeline.New(classifier, store, log, logger)
	start := time.Now()
	batch := orch.ProcessBatch(ctx, items)

	if err := writeTickets(outputPath, batch.Tickets()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(),
		"session %s: %d/%d succeeded, %d failed, %d skipped in %s\n",
		batch.SessionID, batch.Succeeded, len(items), batch.Failed, batch.Skipped,
		time.Since(start).Round(time.Millisecond))
	if n := log.WriteFailures(); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d audit entries failed to persist\n", n)
	}
	return nil
}

// openAuditLog opens the JSONL audit sink, or an in-memory log when no path
// is given.
func openAuditLog(path string, logger *zap.Logger) (*audit.Log, func(), error) {
	if path == "" {
		return audit.NewLog(nil, logger), func() {}, nil
	}
	log, f, err := audit.OpenLog(path, logger)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = f.Close() }, nil
}

func readItems(path string) ([]feedback.Item, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var items []feedback.Item
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item feedback.Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("input line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return items, nil
}

func writeTickets(path string, tickets []*feedback.Ticket) error {
	var w io.Writer
	if path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for _, t := range tickets {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("write ticket %s: %w", t.TicketID, err)
		}
	}
	return nil
}
