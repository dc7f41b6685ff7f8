// Package priority maps text signals and category to a priority level via a
// first-match-wins rule cascade. The cascade is not cumulative: the first
// matching rule decides.
package priority

import (
	"strings"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

var criticalKeywords = []string{
	"urgent", "critical", "data loss", "cannot login", "crashed",
	"lost all", "business", "important",
}

var highKeywords = []string{
	"crash", "error", "bug", "broken", "not working", "issue",
}

// Scorer assigns priorities. Stateless; a single value serves the whole
// pipeline.
type Scorer struct{}

// NewScorer returns a priority scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Score runs the cascade. A critical keyword escalates to Critical
// regardless of category, so even a Feature Request containing "critical"
// outranks its usual Medium.
func (s *Scorer) Score(text string, category feedback.Category) feedback.Priority {
	lower := strings.ToLower(text)

	if containsAny(lower, criticalKeywords) {
		return feedback.PriorityCritical
	}
	if category == feedback.CategoryBug && containsAny(lower, highKeywords) {
		return feedback.PriorityHigh
	}
	switch category {
	case feedback.CategoryFeature, feedback.CategoryComplaint:
		return feedback.PriorityMedium
	case feedback.CategoryPraise, feedback.CategorySpam:
		return feedback.PriorityLow
	default:
		return feedback.PriorityLow
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
