// Package classify scores free-text feedback against the fixed category
// keyword sets and applies the configured confidence gate.
//
// Two classifier variants exist: the always-available rule classifier and an
// optional LLM-backed classifier selected once at startup. The LLM variant
// falls back to the rule result on any timeout, transport error, or
// unparseable reply, so classification is always deterministic-or-better and
// never blocks a batch.
package classify

import (
	"context"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// Result is the outcome of classifying one feedback text. Scores,
// ThresholdUsed, and MeetsThreshold are carried for the audit trail.
type Result struct {
	Category   feedback.Category `json:"category"`
	Confidence float64           `json:"confidence"` // 0-100

	Scores         map[feedback.Category]int `json:"scores"`
	ThresholdUsed  float64                   `json:"threshold_used"`
	MeetsThreshold bool                      `json:"meets_threshold"`
}

// Classifier assigns a category and confidence to feedback text.
type Classifier interface {
	// Classify scores text and applies the confidence gate.
	Classify(ctx context.Context, text string) (Result, error)

	// Available reports whether the classifier is usable. The rule
	// classifier is always available; the LLM variant requires a
	// configured API key.
	Available() bool

	// Name identifies the classifier variant in audit entries.
	Name() string
}

// Thresholds supplies the live confidence gate values. Satisfied by
// *config.Store so in-flight hot-swaps are observed between items.
type Thresholds interface {
	// Threshold returns the per-category gate for a category label.
	Threshold(category string) float64

	// MinimumConfidence returns the global confidence floor.
	MinimumConfidence() float64
}
