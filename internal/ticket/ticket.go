// Package ticket assembles the pipeline's per-stage outputs into the final
// ticket record.
package ticket

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fyrsmithlabs/triaged/internal/analysis"
	"github.com/fyrsmithlabs/triaged/internal/classify"
	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// maxDescriptionLen bounds the ticket description; longer texts are
// truncated with an ellipsis marker.
const maxDescriptionLen = 500

// Inputs carries everything the assembler merges into a ticket.
type Inputs struct {
	Item             feedback.Item
	Classification   classify.Result
	Priority         feedback.Priority
	TechnicalDetails string
	Bug              analysis.BugResult
	Feature          analysis.FeatureResult
}

// Assembler builds tickets.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates a ticket assembler.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble merges the stage outputs into a ticket. Bug and feature fields
// are set only when the corresponding analyzer actually ran; quality fields
// are filled in afterwards by the reviewer stage.
func (a *Assembler) Assemble(in Inputs) *feedback.Ticket {
	t := &feedback.Ticket{
		TicketID:         feedback.TicketID(in.Item.SourceID),
		SourceID:         in.Item.SourceID,
		SourceType:       in.Item.SourceType,
		Category:         in.Classification.Category,
		Priority:         in.Priority,
		Title:            Title(in.Classification.Category, in.Item.Text),
		Description:      truncate(in.Item.Text),
		TechnicalDetails: in.TechnicalDetails,
		ConfidenceScore:  in.Classification.Confidence,
		CreatedAt:        a.now(),
		Status:           feedback.StatusOpen,
		Metadata:         in.Item.Metadata,
	}

	if in.Bug.IsBug {
		t.BugSeverity = in.Bug.Severity
		t.ReproductionSteps = in.Bug.ReproductionSteps
		t.BugPriority = in.Bug.Priority
	}
	if in.Feature.IsFeature {
		t.FeatureImpact = in.Feature.Impact
		t.FeatureComplexity = in.Feature.Complexity
		t.UserBenefit = in.Feature.UserBenefit
	}

	return t
}

func truncate(text string) string {
	if len(text) <= maxDescriptionLen {
		return text
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := maxDescriptionLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// Title derives a ticket title from the category and text content.
func Title(category feedback.Category, text string) string {
	lower := strings.ToLower(text)

	switch category {
	case feedback.CategoryBug:
		switch {
		case strings.Contains(lower, "crash"):
			return "Fix: Application crash issue"
		case strings.Contains(lower, "login"):
			return "Fix: Login authentication problem"
		case strings.Contains(lower, "sync"):
			return "Fix: Data synchronization issue"
		default:
			return "Fix: Application bug report"
		}
	case feedback.CategoryFeature:
		switch {
		case strings.Contains(lower, "dark mode"):
			return "Feature: Add dark mode support"
		case strings.Contains(lower, "calendar"):
			return "Feature: Calendar integration"
		case strings.Contains(lower, "export"):
			return "Feature: Export functionality"
		default:
			return "Feature: User-requested enhancement"
		}
	case feedback.CategoryPraise:
		return "Positive feedback received"
	case feedback.CategoryComplaint:
		return "User complaint - investigate"
	case feedback.CategoryUncertain:
		return "Uncertain feedback - manual triage required"
	default: // Spam
		return "Spam content - review for removal"
	}
}
