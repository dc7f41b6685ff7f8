package analysis

import (
	"strings"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
	"github.com/fyrsmithlabs/triaged/internal/priority"
	"github.com/fyrsmithlabs/triaged/internal/techdetect"
)

// NotApplicable marks analyzer fields that do not apply to an item.
const NotApplicable = "N/A"

// Reproduction field values. The original report strings are preserved
// because downstream tooling matches on them.
const (
	ReproductionPresent = "Contains reproduction steps"
	ReproductionMissing = "No steps provided"
)

// BugResult is the bug analyzer's output. A skipped item carries IsBug=false
// and all-N/A fields.
type BugResult struct {
	IsBug             bool   `json:"is_bug"`
	TechnicalDetails  string `json:"technical_details"`
	Severity          string `json:"severity"`
	Priority          string `json:"priority"`
	ReproductionSteps string `json:"reproduction_steps,omitempty"`
}

// Skipped reports whether the analyzer declined the item.
func (r BugResult) Skipped() bool { return !r.IsBug }

var severityHighKeywords = []string{"crash", "data loss", "cannot", "critical", "urgent"}
var severityMediumKeywords = []string{"error", "issue", "problem", "broken"}

// BugAnalyzer enriches bug-category items with severity, priority, and
// technical details.
type BugAnalyzer struct {
	extractor *techdetect.Extractor
	scorer    *priority.Scorer
	enabled   bool
}

// NewBugAnalyzer creates a bug analyzer. A disabled analyzer skips every
// item, mirroring the category gate.
func NewBugAnalyzer(extractor *techdetect.Extractor, scorer *priority.Scorer, enabled bool) *BugAnalyzer {
	return &BugAnalyzer{extractor: extractor, scorer: scorer, enabled: enabled}
}

// Analyze gates on the bug category (case-insensitive) and, for bugs, runs
// technical extraction, priority scoring, and keyword severity assessment.
func (a *BugAnalyzer) Analyze(text string, category feedback.Category) BugResult {
	if !a.enabled || !category.IsBug() {
		return BugResult{
			IsBug:            false,
			TechnicalDetails: "N/A - not a bug report",
			Severity:         NotApplicable,
			Priority:         NotApplicable,
		}
	}

	lower := strings.ToLower(text)

	severity := "Low"
	if containsAny(lower, severityHighKeywords) {
		severity = "High"
	} else if containsAny(lower, severityMediumKeywords) {
		severity = "Medium"
	}

	reproduction := ReproductionMissing
	if techdetect.HasReproductionSteps(text) {
		reproduction = ReproductionPresent
	}

	return BugResult{
		IsBug:             true,
		TechnicalDetails:  a.extractor.Extract(text),
		Severity:          severity,
		Priority:          string(a.scorer.Score(text, category)),
		ReproductionSteps: reproduction,
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
