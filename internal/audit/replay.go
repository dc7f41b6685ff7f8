package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// maxLineBytes bounds a single replayed JSONL line. Entries are clipped on
// write, so anything larger indicates a corrupt or foreign file.
const maxLineBytes = 1 << 20

// ReadEntries decodes JSONL audit entries from r. Blank lines are skipped; a
// malformed line aborts with its line number.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("audit log line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// Replay builds an in-memory log from previously written entries, for
// offline session aggregation. The returned log has no sink.
func Replay(entries []Entry, logger *zap.Logger) *Log {
	l := NewLog(nil, logger)
	l.entries = append(l.entries, entries...)
	return l
}
