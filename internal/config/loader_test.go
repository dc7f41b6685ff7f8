package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyYieldsDefaults(t *testing.T) {
	cfg, err := parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default().ClassificationThresholds, cfg.ClassificationThresholds)
	assert.Equal(t, Default().ProcessingRules, cfg.ProcessingRules)
}

func TestParseOverlaysFileOverDefaults(t *testing.T) {
	raw := []byte(`
classification_thresholds:
  bug_threshold: 0.85
processing_rules:
  batch_size: 25
`)
	cfg, err := parse(raw)
	require.NoError(t, err)

	assert.Equal(t, 0.85, cfg.ClassificationThresholds.BugThreshold)
	assert.Equal(t, 25, cfg.ProcessingRules.BatchSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.6, cfg.ClassificationThresholds.FeatureThreshold)
	assert.Equal(t, 3, cfg.ProcessingRules.MaxRetries)
}

func TestParseEnvOverridesFile(t *testing.T) {
	t.Setenv("CLASSIFICATION_THRESHOLDS_BUG_THRESHOLD", "0.95")
	t.Setenv("PROCESSING_RULES_BATCH_SIZE", "4")
	t.Setenv("AGENT_SETTINGS_ENABLE_QUALITY_REVIEW", "false")

	raw := []byte("classification_thresholds:\n  bug_threshold: 0.85\n")
	cfg, err := parse(raw)
	require.NoError(t, err)

	assert.Equal(t, 0.95, cfg.ClassificationThresholds.BugThreshold)
	assert.Equal(t, 4, cfg.ProcessingRules.BatchSize)
	assert.False(t, cfg.AgentSettings.EnableQualityReview)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := parse([]byte("classification_thresholds: ["))
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.ClassificationThresholds.SpamThreshold = 0.91
	cfg.ProcessingRules.SkipLowConfidenceItems = true
	cfg.PriorityWeights.FeaturePriorityMapping["High Impact"] = "Critical"

	data, err := Marshal(cfg)
	require.NoError(t, err)

	got, err := parse(data)
	require.NoError(t, err)

	assert.Equal(t, cfg.ClassificationThresholds, got.ClassificationThresholds)
	assert.Equal(t, cfg.PriorityWeights, got.PriorityWeights)
	assert.Equal(t, cfg.QualityThresholds, got.QualityThresholds)
	assert.Equal(t, cfg.AgentSettings, got.AgentSettings)
	assert.Equal(t, cfg.ProcessingRules, got.ProcessingRules)
	assert.Equal(t, cfg.Version, got.Version)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CLASSIFICATION_THRESHOLDS_BUG_THRESHOLD", "classification_thresholds.bug_threshold"},
		{"PROCESSING_RULES_BATCH_SIZE", "processing_rules.batch_size"},
		{"AGENT_SETTINGS_CLASSIFICATION_TIMEOUT", "agent_settings.classification_timeout"},
		{"QUALITY_THRESHOLDS_REJECT_THRESHOLD", "quality_thresholds.reject_threshold"},
		{"PRIORITY_WEIGHTS_USER_IMPACT_WEIGHT", "priority_weights.user_impact_weight"},
		{"VERSION", "version"},
		{"UNRELATED_VAR", "unrelated_var"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envTransform(tt.in), tt.in)
	}
}
