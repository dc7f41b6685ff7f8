// Package quality scores assembled tickets for completeness and buckets
// them approved or needs_review.
package quality

import (
	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// approveCutoff is the fixed score at which a ticket is approved. It is
// intentionally independent of the configurable three-tier quality
// thresholds, which exist for configuration and validation only; unifying
// them would change observed behavior and needs an explicit product
// decision first.
const approveCutoff = 70

// Assessment is the reviewer's verdict on one ticket.
type Assessment struct {
	Score  float64               `json:"quality_score"`
	Issues []string              `json:"issues"`
	Status feedback.ReviewStatus `json:"status"`
}

// Reviewer scores tickets. A disabled reviewer approves everything at full
// score so the pipeline shape stays uniform.
type Reviewer struct {
	enabled bool
}

// NewReviewer creates a quality reviewer.
func NewReviewer(enabled bool) *Reviewer {
	return &Reviewer{enabled: enabled}
}

// Review deducts from a starting score of 100: 20 per missing required
// field, 10 for a description under ten characters, 15 for confidence under
// 50. Score never drives rejection here; anything under the cutoff is
// flagged needs_review for a human.
func (r *Reviewer) Review(t *feedback.Ticket) Assessment {
	if !r.enabled {
		return Assessment{Score: 100, Issues: []string{}, Status: feedback.ReviewApproved}
	}

	score := 100.0
	issues := []string{}

	required := []struct {
		name  string
		value string
	}{
		{"title", t.Title},
		{"description", t.Description},
		{"category", string(t.Category)},
		{"priority", string(t.Priority)},
	}
	for _, field := range required {
		if field.value == "" {
			score -= 20
			issues = append(issues, "Missing "+field.name)
		}
	}

	if len(t.Description) < 10 {
		score -= 10
		issues = append(issues, "Description too short")
	}

	if t.ConfidenceScore < 50 {
		score -= 15
		issues = append(issues, "Low confidence score")
	}

	status := feedback.ReviewNeedsReview
	if score >= approveCutoff {
		status = feedback.ReviewApproved
	}

	return Assessment{Score: score, Issues: issues, Status: status}
}
