package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
	"github.com/fyrsmithlabs/triaged/internal/logging"
)

func testItem() feedback.Item {
	return feedback.Item{
		SourceID:   "APP-001",
		SourceType: feedback.SourceAppStoreReview,
		Text:       "The app crashes on startup",
	}
}

func TestAppendWritesOneJSONLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(&buf, zap.NewNop())

	l.Append(Classification("s1", testItem(), feedback.CategoryBug, 100, 1.2))
	l.Append(PriorityDecision("s1", testItem(), feedback.CategoryBug, feedback.PriorityHigh, 0.3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, StageClassification, first.Stage)
	assert.Equal(t, "feedback_categorization", first.DecisionPoint)
	assert.False(t, first.Timestamp.IsZero())
	require.NotNil(t, first.Confidence)
	assert.Equal(t, 100.0, *first.Confidence)
}

func TestAppendClipsOversizedFields(t *testing.T) {
	l := NewLog(nil, zap.NewNop())

	item := testItem()
	item.Text = strings.Repeat("a", 500)
	entry := Classification("s1", item, feedback.CategoryBug, 50, 1)
	entry.Reasoning = strings.Repeat("r", 2000)
	entry.Error = strings.Repeat("e", 800)
	l.Append(entry)

	got := l.Entries()[0]
	assert.Len(t, got.Input, maxInputLen)
	assert.Len(t, got.Reasoning, maxReasoningLen)
	assert.Len(t, got.Error, maxErrorLen)
}

func TestAppendClipsOnRuneBoundary(t *testing.T) {
	l := NewLog(nil, zap.NewNop())

	item := testItem()
	// 300 bytes of 3-byte runes: the 200-byte bound falls mid-rune.
	item.Text = strings.Repeat("日", 100)
	l.Append(Classification("s1", item, feedback.CategoryBug, 50, 1))

	got := l.Entries()[0]
	assert.True(t, utf8.ValidString(got.Input))
	assert.LessOrEqual(t, len(got.Input), maxInputLen)
	assert.Equal(t, strings.Repeat("日", 66), got.Input)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAppendSurvivesSinkFailure(t *testing.T) {
	logger, logs := logging.NewObserved()
	l := NewLog(failingWriter{}, logger)

	l.Append(Classification("s1", testItem(), feedback.CategoryBug, 100, 1))

	// The entry is retained and the failure counted, not fatal.
	assert.Len(t, l.Entries(), 1)
	assert.Equal(t, 1, l.WriteFailures())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestAppendIsSafeForConcurrentWriters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(&buf, zap.NewNop())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Append(Classification("s1", testItem(), feedback.CategoryBug, 100, 1))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, l.Entries(), 400)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 400)
	for _, line := range lines {
		var e Entry
		require.NoError(t, json.Unmarshal([]byte(line), &e), "interleaved write")
	}
}

func TestEntriesReturnsACopy(t *testing.T) {
	l := NewLog(nil, zap.NewNop())
	l.Append(Classification("s1", testItem(), feedback.CategoryBug, 100, 1))

	first := l.Entries()
	first[0].SessionID = "mutated"
	assert.Equal(t, "s1", l.Entries()[0].SessionID)
}

func TestReadEntriesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(&buf, zap.NewNop())
	l.Append(Classification("s1", testItem(), feedback.CategoryBug, 100, 1))
	l.Append(SessionSummary("s1", 1, 1, 5))

	entries, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StageClassification, entries[0].Stage)
	assert.Equal(t, StageSessionSummary, entries[1].Stage)

	replayed := Replay(entries, zap.NewNop())
	assert.Equal(t, 2, replayed.SessionStats("s1").TotalOperations)
}

func TestReadEntriesRejectsMalformedLine(t *testing.T) {
	_, err := ReadEntries(strings.NewReader("{\"stage\":\"classification\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
