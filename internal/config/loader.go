package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// parse loads a configuration from raw YAML bytes layered over defaults,
// then applies environment variable overrides.
//
// Environment variables use underscore separators and are uppercased, split
// on the first underscore into section and field:
//
//	CLASSIFICATION_THRESHOLDS_BUG_THRESHOLD -> classification.thresholds...
//
// Because every section name here contains underscores itself, the
// transformer matches against known section prefixes instead of splitting
// blindly:
//
//	PROCESSING_RULES_BATCH_SIZE -> processing_rules.batch_size
//	AGENT_SETTINGS_CLASSIFICATION_TIMEOUT -> agent_settings.classification_timeout
func parse(raw []byte) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	defaultYAML, err := yaml.Parser().Marshal(toMap(defaults))
	if err != nil {
		return nil, fmt.Errorf("marshal defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(defaultYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if len(raw) > 0 {
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// sections of the config document, longest-prefix-first so the env
// transformer resolves compound names deterministically.
var envSections = []string{
	"classification_thresholds",
	"priority_weights",
	"quality_thresholds",
	"agent_settings",
	"processing_rules",
}

func envTransform(s string) string {
	lower := strings.ToLower(s)
	for _, section := range envSections {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	// Top-level scalar (version, created_by) or unrelated variable; keeping
	// unrelated keys at the top level is harmless because Unmarshal ignores
	// unknown fields.
	return lower
}

// toMap converts a Config to the nested map shape koanf and the YAML
// serializer expect.
func toMap(c *Config) map[string]any {
	return map[string]any{
		"classification_thresholds": map[string]any{
			"bug_threshold":       c.ClassificationThresholds.BugThreshold,
			"feature_threshold":   c.ClassificationThresholds.FeatureThreshold,
			"praise_threshold":    c.ClassificationThresholds.PraiseThreshold,
			"complaint_threshold": c.ClassificationThresholds.ComplaintThreshold,
			"spam_threshold":      c.ClassificationThresholds.SpamThreshold,
			"minimum_confidence":  c.ClassificationThresholds.MinimumConfidence,
		},
		"priority_weights": map[string]any{
			"bug_severity_weight":         c.PriorityWeights.BugSeverityWeight,
			"user_impact_weight":          c.PriorityWeights.UserImpactWeight,
			"technical_complexity_weight": c.PriorityWeights.TechnicalComplexityWeight,
			"business_priority_weight":    c.PriorityWeights.BusinessPriorityWeight,
			"bug_priority_mapping":        c.PriorityWeights.BugPriorityMapping,
			"feature_priority_mapping":    c.PriorityWeights.FeaturePriorityMapping,
		},
		"quality_thresholds": map[string]any{
			"minimum_quality_score":   c.QualityThresholds.MinimumQualityScore,
			"auto_approve_threshold":  c.QualityThresholds.AutoApproveThreshold,
			"manual_review_threshold": c.QualityThresholds.ManualReviewThreshold,
			"reject_threshold":        c.QualityThresholds.RejectThreshold,
		},
		"agent_settings": map[string]any{
			"enable_bug_analysis":         c.AgentSettings.EnableBugAnalysis,
			"enable_feature_extraction":   c.AgentSettings.EnableFeatureExtraction,
			"enable_quality_review":       c.AgentSettings.EnableQualityReview,
			"enable_technical_extraction": c.AgentSettings.EnableTechnicalExtraction,
			"classification_timeout":      c.AgentSettings.ClassificationTimeout,
			"bug_analysis_timeout":        c.AgentSettings.BugAnalysisTimeout,
			"feature_extraction_timeout":  c.AgentSettings.FeatureExtractionTimeout,
			"quality_review_timeout":      c.AgentSettings.QualityReviewTimeout,
		},
		"processing_rules": map[string]any{
			"skip_low_confidence_items":          c.ProcessingRules.SkipLowConfidenceItems,
			"auto_categorize_spam":               c.ProcessingRules.AutoCategorizeSpam,
			"require_manual_review_for_critical": c.ProcessingRules.RequireManualReviewForCritical,
			"batch_size":                         c.ProcessingRules.BatchSize,
			"max_retries":                        c.ProcessingRules.MaxRetries,
		},
		"version":      c.Version,
		"last_updated": c.LastUpdated,
		"created_by":   c.CreatedBy,
	}
}

// Marshal serializes a configuration to YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Parser().Marshal(toMap(c))
}

// readFile reads a config file, enforcing the size limit.
func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return os.ReadFile(path)
}
