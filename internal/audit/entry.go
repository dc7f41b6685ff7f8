package audit

import (
	"time"
	"unicode/utf8"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// Snapshot bounds. Inputs and error text are clipped so a single oversized
// feedback text cannot bloat the log.
const (
	maxInputLen     = 200
	maxReasoningLen = 1000
	maxErrorLen     = 500
)

// Stage names the pipeline stage an entry belongs to.
type Stage string

const (
	StageClassification  Stage = "classification"
	StageBugAnalysis     Stage = "bug_analysis"
	StageFeatureAnalysis Stage = "feature_analysis"
	StagePriority        Stage = "priority"
	StageTechnical       Stage = "technical_extraction"
	StageTicketCreation  Stage = "ticket_creation"
	StageQualityReview   Stage = "quality_review"
	StageSessionSummary  Stage = "session_summary"
)

// Entry is one immutable audit record. Entries are never mutated or deleted
// after Append.
type Entry struct {
	Timestamp     time.Time           `json:"timestamp"`
	SessionID     string              `json:"session_id"`
	SourceID      string              `json:"source_id"`
	SourceType    feedback.SourceType `json:"source_type"`
	Stage         Stage               `json:"stage"`
	ActionType    string              `json:"action_type"`
	DecisionPoint string              `json:"decision_point"`
	Input         string              `json:"input_data"`
	Output        map[string]any      `json:"output_data"`
	Confidence    *float64            `json:"confidence_score,omitempty"`
	Reasoning     string              `json:"reasoning"`
	DurationMS    float64             `json:"processing_time_ms"`
	Success       bool                `json:"success_status"`
	Error         string              `json:"error_message,omitempty"`
	Metadata      map[string]any      `json:"metadata,omitempty"`
}

// clip bounds s to max bytes, backing off to a rune boundary so the cut
// never splits a multi-byte character.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func confidence(v float64) *float64 {
	return &v
}
