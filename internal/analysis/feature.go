package analysis

import (
	"strings"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
	"github.com/fyrsmithlabs/triaged/internal/priority"
)

// FeatureResult is the feature analyzer's output. A skipped item carries
// IsFeature=false and all-N/A fields.
type FeatureResult struct {
	IsFeature   bool   `json:"is_feature"`
	Impact      string `json:"impact"`
	Complexity  string `json:"complexity"`
	Priority    string `json:"priority"`
	UserBenefit string `json:"user_benefit,omitempty"`
}

// Skipped reports whether the analyzer declined the item.
func (r FeatureResult) Skipped() bool { return !r.IsFeature }

var impactHighKeywords = []string{"all users", "everyone", "essential", "critical", "necessary"}
var impactMediumKeywords = []string{"many users", "important", "useful", "would help"}

var complexityLowKeywords = []string{"simple", "easy", "basic", "just add"}
var complexityHighKeywords = []string{"complex", "difficult", "integration", "system"}

// FeatureAnalyzer enriches feature-request items with impact, complexity,
// and user benefit.
type FeatureAnalyzer struct {
	scorer  *priority.Scorer
	enabled bool
}

// NewFeatureAnalyzer creates a feature analyzer. A disabled analyzer skips
// every item.
func NewFeatureAnalyzer(scorer *priority.Scorer, enabled bool) *FeatureAnalyzer {
	return &FeatureAnalyzer{scorer: scorer, enabled: enabled}
}

// Analyze gates on the feature-request category (case-insensitive) and, for
// features, scores impact and complexity by keyword.
func (a *FeatureAnalyzer) Analyze(text string, category feedback.Category) FeatureResult {
	if !a.enabled || !category.IsFeature() {
		return FeatureResult{
			IsFeature:  false,
			Impact:     NotApplicable,
			Complexity: NotApplicable,
			Priority:   NotApplicable,
		}
	}

	lower := strings.ToLower(text)

	impact := "Low"
	if containsAny(lower, impactHighKeywords) {
		impact = "High"
	} else if containsAny(lower, impactMediumKeywords) {
		impact = "Medium"
	}

	complexity := "Medium"
	if containsAny(lower, complexityLowKeywords) {
		complexity = "Low"
	} else if containsAny(lower, complexityHighKeywords) {
		complexity = "High"
	}

	benefit := impact + " user value"
	if impact == "High" {
		benefit = "High user value"
	}

	return FeatureResult{
		IsFeature:   true,
		Impact:      impact,
		Complexity:  complexity,
		Priority:    string(a.scorer.Score(text, category)),
		UserBenefit: benefit,
	}
}
