package feedback

import (
	"strings"
	"time"
)

// Category is the classification outcome for a feedback item.
type Category string

const (
	CategoryBug       Category = "Bug"
	CategoryFeature   Category = "Feature Request"
	CategoryPraise    Category = "Praise"
	CategoryComplaint Category = "Complaint"
	CategorySpam      Category = "Spam"

	// CategoryUncertain is assigned when classification confidence falls
	// below both the per-category and global thresholds.
	CategoryUncertain Category = "Uncertain"
)

// Categories returns the five scored categories in classification order.
// The order is load-bearing: arg-max ties break toward the earliest entry,
// so an all-zero-score text classifies as Bug. Preserved deliberately.
func Categories() []Category {
	return []Category{
		CategoryBug,
		CategoryFeature,
		CategoryPraise,
		CategoryComplaint,
		CategorySpam,
	}
}

// Valid reports whether c is one of the enumerated categories,
// including Uncertain.
func (c Category) Valid() bool {
	switch c {
	case CategoryBug, CategoryFeature, CategoryPraise, CategoryComplaint,
		CategorySpam, CategoryUncertain:
		return true
	}
	return false
}

// IsBug reports whether c is the bug category, case-insensitively.
// Gating on analyzers compares case-insensitively because categories may
// round-trip through external stores that fold case.
func (c Category) IsBug() bool {
	return strings.EqualFold(string(c), string(CategoryBug))
}

// IsFeature reports whether c is the feature-request category,
// case-insensitively.
func (c Category) IsFeature() bool {
	return strings.EqualFold(string(c), string(CategoryFeature))
}

// Priority is the urgency bucket assigned to a ticket.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// SourceType identifies where a feedback item originated.
type SourceType string

const (
	SourceAppStoreReview SourceType = "app_store_review"
	SourceSupportEmail   SourceType = "support_email"
)

// Item is one raw feedback record to be triaged. Items are immutable once
// ingested; the pipeline never mutates them.
type Item struct {
	SourceID   string            `json:"source_id"`
	SourceType SourceType        `json:"source_type"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// TicketStatus is the lifecycle state of an assembled ticket. This core only
// ever emits StatusOpen; downstream review workflows own later transitions.
type TicketStatus string

const (
	StatusOpen TicketStatus = "Open"
)

// ReviewStatus is the quality reviewer's verdict on a ticket.
type ReviewStatus string

const (
	ReviewApproved    ReviewStatus = "approved"
	ReviewNeedsReview ReviewStatus = "needs_review"
)

// Ticket is the write-once output of the triage pipeline for one item.
// Bug and feature fields are populated only when the corresponding analyzer
// was active for the item's category.
type Ticket struct {
	TicketID         string       `json:"ticket_id"`
	SourceID         string       `json:"source_id"`
	SourceType       SourceType   `json:"source_type"`
	Category         Category     `json:"category"`
	Priority         Priority     `json:"priority"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	TechnicalDetails string       `json:"technical_details"`
	ConfidenceScore  float64      `json:"confidence_score"`
	CreatedAt        time.Time    `json:"created_at"`
	Status           TicketStatus `json:"status"`

	// Bug analysis fields, present only for Bug tickets.
	BugSeverity       string `json:"bug_severity,omitempty"`
	ReproductionSteps string `json:"reproduction_steps,omitempty"`
	BugPriority       string `json:"bug_priority,omitempty"`

	// Feature analysis fields, present only for Feature Request tickets.
	FeatureImpact     string `json:"feature_impact,omitempty"`
	FeatureComplexity string `json:"feature_complexity,omitempty"`
	UserBenefit       string `json:"user_benefit,omitempty"`

	// Quality review fields.
	QualityScore  float64      `json:"quality_score"`
	QualityIssues []string     `json:"quality_issues,omitempty"`
	ReviewStatus  ReviewStatus `json:"review_status"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// TicketID derives the deterministic ticket identifier for a source ID.
// Collisions across source types sharing an ID are an ingestion-layer
// responsibility.
func TicketID(sourceID string) string {
	return "TICKET-" + sourceID
}
