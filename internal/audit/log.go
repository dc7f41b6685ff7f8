package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Log is the append-only decision log. A single mutex serializes concurrent
// appends from batch workers; each entry is encoded and flushed to the sink
// before Append returns. Entries are also retained in memory for on-demand
// session aggregation and mirrored to zap at debug level.
//
// A sink write failure is a persistence error: it is logged and counted, the
// in-memory copy is still retained, and the pipeline continues. The
// data-loss window is limited to the unwritten line.
type Log struct {
	mu      sync.Mutex
	sink    io.Writer
	entries []Entry
	logger  *zap.Logger

	writeFailures int
}

// NewLog creates a log writing JSON lines to sink. A nil sink keeps entries
// in memory only.
func NewLog(sink io.Writer, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{sink: sink, logger: logger.Named("audit")}
}

// OpenLog creates a log appending to the JSONL file at path.
func OpenLog(path string, logger *zap.Logger) (*Log, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	return NewLog(f, logger), f, nil
}

// Append records one entry. The timestamp is stamped here if unset; input,
// reasoning, and error snapshots are clipped to their bounds.
func (l *Log) Append(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Input = clip(entry.Input, maxInputLen)
	entry.Reasoning = clip(entry.Reasoning, maxReasoningLen)
	entry.Error = clip(entry.Error, maxErrorLen)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.logger.Debug("decision",
		zap.String("stage", string(entry.Stage)),
		zap.String("source_id", entry.SourceID),
		zap.String("decision_point", entry.DecisionPoint),
		zap.Bool("success", entry.Success),
	)

	if l.sink == nil {
		return
	}
	line, err := json.Marshal(entry)
	if err != nil {
		l.writeFailures++
		l.logger.Warn("audit entry encode failed", zap.Error(err))
		return
	}
	if _, err := l.sink.Write(append(line, '\n')); err != nil {
		l.writeFailures++
		l.logger.Warn("audit entry write failed", zap.Error(err))
	}
}

// Entries returns a copy of all retained entries.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// WriteFailures returns how many entries failed to reach the sink.
func (l *Log) WriteFailures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeFailures
}
