package config

import (
	"fmt"
	"math"
	"time"
)

// ClassificationThresholds holds per-category confidence thresholds plus the
// global floor. All values are ratios in [0,1].
type ClassificationThresholds struct {
	BugThreshold       float64 `koanf:"bug_threshold" json:"bug_threshold"`
	FeatureThreshold   float64 `koanf:"feature_threshold" json:"feature_threshold"`
	PraiseThreshold    float64 `koanf:"praise_threshold" json:"praise_threshold"`
	ComplaintThreshold float64 `koanf:"complaint_threshold" json:"complaint_threshold"`
	SpamThreshold      float64 `koanf:"spam_threshold" json:"spam_threshold"`
	MinimumConfidence  float64 `koanf:"minimum_confidence" json:"minimum_confidence"`
}

// PriorityWeights holds priority assignment weights and the category-specific
// priority label mappings.
type PriorityWeights struct {
	BugSeverityWeight         float64 `koanf:"bug_severity_weight" json:"bug_severity_weight"`
	UserImpactWeight          float64 `koanf:"user_impact_weight" json:"user_impact_weight"`
	TechnicalComplexityWeight float64 `koanf:"technical_complexity_weight" json:"technical_complexity_weight"`
	BusinessPriorityWeight    float64 `koanf:"business_priority_weight" json:"business_priority_weight"`

	BugPriorityMapping     map[string]string `koanf:"bug_priority_mapping" json:"bug_priority_mapping"`
	FeaturePriorityMapping map[string]string `koanf:"feature_priority_mapping" json:"feature_priority_mapping"`
}

// Sum returns the total of the four scalar weights.
func (w PriorityWeights) Sum() float64 {
	return w.BugSeverityWeight + w.UserImpactWeight +
		w.TechnicalComplexityWeight + w.BusinessPriorityWeight
}

// QualityThresholds holds the three-tier quality review thresholds on the
// 0-100 scale. They must be strictly ascending: reject < manual_review <
// auto_approve.
//
// The quality reviewer applies its own fixed 70 cutoff independently of these
// values; they exist for configuration and validation purposes. See the
// quality package.
type QualityThresholds struct {
	MinimumQualityScore   float64 `koanf:"minimum_quality_score" json:"minimum_quality_score"`
	AutoApproveThreshold  float64 `koanf:"auto_approve_threshold" json:"auto_approve_threshold"`
	ManualReviewThreshold float64 `koanf:"manual_review_threshold" json:"manual_review_threshold"`
	RejectThreshold       float64 `koanf:"reject_threshold" json:"reject_threshold"`
}

// AgentSettings enables or disables individual pipeline stages and bounds
// their execution time (seconds).
type AgentSettings struct {
	EnableBugAnalysis         bool `koanf:"enable_bug_analysis" json:"enable_bug_analysis"`
	EnableFeatureExtraction   bool `koanf:"enable_feature_extraction" json:"enable_feature_extraction"`
	EnableQualityReview       bool `koanf:"enable_quality_review" json:"enable_quality_review"`
	EnableTechnicalExtraction bool `koanf:"enable_technical_extraction" json:"enable_technical_extraction"`

	ClassificationTimeout    int `koanf:"classification_timeout" json:"classification_timeout"`
	BugAnalysisTimeout       int `koanf:"bug_analysis_timeout" json:"bug_analysis_timeout"`
	FeatureExtractionTimeout int `koanf:"feature_extraction_timeout" json:"feature_extraction_timeout"`
	QualityReviewTimeout     int `koanf:"quality_review_timeout" json:"quality_review_timeout"`
}

// ClassificationTimeoutDuration returns the classification timeout as a
// time.Duration for context deadlines on external classifier calls.
func (s AgentSettings) ClassificationTimeoutDuration() time.Duration {
	return time.Duration(s.ClassificationTimeout) * time.Second
}

// ProcessingRules holds batch processing behavior switches.
type ProcessingRules struct {
	SkipLowConfidenceItems         bool `koanf:"skip_low_confidence_items" json:"skip_low_confidence_items"`
	AutoCategorizeSpam             bool `koanf:"auto_categorize_spam" json:"auto_categorize_spam"`
	RequireManualReviewForCritical bool `koanf:"require_manual_review_for_critical" json:"require_manual_review_for_critical"`
	BatchSize                      int  `koanf:"batch_size" json:"batch_size"`
	MaxRetries                     int  `koanf:"max_retries" json:"max_retries"`
}

// Config is the complete triage system configuration.
type Config struct {
	ClassificationThresholds ClassificationThresholds `koanf:"classification_thresholds" json:"classification_thresholds"`
	PriorityWeights          PriorityWeights          `koanf:"priority_weights" json:"priority_weights"`
	QualityThresholds        QualityThresholds        `koanf:"quality_thresholds" json:"quality_thresholds"`
	AgentSettings            AgentSettings            `koanf:"agent_settings" json:"agent_settings"`
	ProcessingRules          ProcessingRules          `koanf:"processing_rules" json:"processing_rules"`

	Version     string `koanf:"version" json:"version"`
	LastUpdated string `koanf:"last_updated" json:"last_updated"`
	CreatedBy   string `koanf:"created_by" json:"created_by"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ClassificationThresholds: ClassificationThresholds{
			BugThreshold:       0.7,
			FeatureThreshold:   0.6,
			PraiseThreshold:    0.6,
			ComplaintThreshold: 0.6,
			SpamThreshold:      0.8,
			MinimumConfidence:  0.5,
		},
		PriorityWeights: PriorityWeights{
			BugSeverityWeight:         0.4,
			UserImpactWeight:          0.3,
			TechnicalComplexityWeight: 0.2,
			BusinessPriorityWeight:    0.1,
			BugPriorityMapping: map[string]string{
				"Critical": "Critical",
				"High":     "High",
				"Medium":   "Medium",
				"Low":      "Low",
			},
			FeaturePriorityMapping: map[string]string{
				"High Impact":   "High",
				"Medium Impact": "Medium",
				"Low Impact":    "Low",
			},
		},
		QualityThresholds: QualityThresholds{
			MinimumQualityScore:   70.0,
			AutoApproveThreshold:  90.0,
			ManualReviewThreshold: 60.0,
			RejectThreshold:       40.0,
		},
		AgentSettings: AgentSettings{
			EnableBugAnalysis:         true,
			EnableFeatureExtraction:   true,
			EnableQualityReview:       true,
			EnableTechnicalExtraction: true,
			ClassificationTimeout:     30,
			BugAnalysisTimeout:        45,
			FeatureExtractionTimeout:  30,
			QualityReviewTimeout:      20,
		},
		ProcessingRules: ProcessingRules{
			SkipLowConfidenceItems:         false,
			AutoCategorizeSpam:             true,
			RequireManualReviewForCritical: true,
			BatchSize:                      10,
			MaxRetries:                     3,
		},
		Version:     "1.0.0",
		LastUpdated: time.Now().Format(time.RFC3339),
		CreatedBy:   "system_default",
	}
}

// Report is the outcome of validating a configuration. Issues are hard
// failures; Warnings are advisory and do not invalidate the config.
type Report struct {
	Valid    bool     `json:"valid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// Validate checks threshold ranges, quality threshold ordering, and priority
// weight normalization. Out-of-range thresholds and non-ascending quality
// thresholds are hard issues; a weight sum outside [0.9,1.1] is a warning.
func (c *Config) Validate() Report {
	var issues, warnings []string

	ct := c.ClassificationThresholds
	if ct.MinimumConfidence < 0.0 || ct.MinimumConfidence > 1.0 {
		issues = append(issues, "minimum_confidence must be between 0.0 and 1.0")
	}
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"bug_threshold", ct.BugThreshold},
		{"feature_threshold", ct.FeatureThreshold},
		{"praise_threshold", ct.PraiseThreshold},
		{"complaint_threshold", ct.ComplaintThreshold},
		{"spam_threshold", ct.SpamThreshold},
	} {
		if t.value < 0.0 || t.value > 1.0 {
			issues = append(issues, fmt.Sprintf("%s must be between 0.0 and 1.0", t.name))
		}
	}

	if sum := c.PriorityWeights.Sum(); math.Abs(sum-1.0) > 0.1 {
		warnings = append(warnings,
			fmt.Sprintf("priority weights sum to %.2f, consider normalizing to 1.0", sum))
	}

	qt := c.QualityThresholds
	if qt.RejectThreshold >= qt.ManualReviewThreshold {
		issues = append(issues, "reject threshold must be lower than manual review threshold")
	}
	if qt.ManualReviewThreshold >= qt.AutoApproveThreshold {
		issues = append(issues, "manual review threshold must be lower than auto-approve threshold")
	}

	return Report{
		Valid:    len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
	}
}

// Threshold returns the classification threshold for a category label,
// falling back to the global minimum confidence for unrecognized categories.
func (c *Config) Threshold(category string) float64 {
	switch category {
	case "Bug":
		return c.ClassificationThresholds.BugThreshold
	case "Feature Request":
		return c.ClassificationThresholds.FeatureThreshold
	case "Praise":
		return c.ClassificationThresholds.PraiseThreshold
	case "Complaint":
		return c.ClassificationThresholds.ComplaintThreshold
	case "Spam":
		return c.ClassificationThresholds.SpamThreshold
	default:
		return c.ClassificationThresholds.MinimumConfidence
	}
}

// Clone returns a deep copy of the configuration. Updates mutate a clone so
// the currently-served snapshot stays immutable.
func (c *Config) Clone() *Config {
	out := *c
	out.PriorityWeights.BugPriorityMapping = cloneMap(c.PriorityWeights.BugPriorityMapping)
	out.PriorityWeights.FeaturePriorityMapping = cloneMap(c.PriorityWeights.FeaturePriorityMapping)
	return &out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
