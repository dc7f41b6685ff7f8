package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownSection is returned by Update for a section name that does not
// exist in the configuration document.
var ErrUnknownSection = errors.New("unknown config section")

// ErrInvalidConfig is returned when a candidate configuration fails hard
// validation. The previously served snapshot remains in effect.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidValue is returned by Update when a recognized field's value
// cannot be coerced to the field's type. The whole update is rejected.
var ErrInvalidValue = errors.New("invalid config value")

// Store owns the persisted configuration file and serves immutable snapshots
// to the pipeline. Readers never block: Snapshot is a single atomic load.
// All mutation paths (Update, Import, Reset, file-watch reloads) validate a
// candidate, persist it, and swap the pointer under a mutex.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex // serializes mutations and persistence
	current atomic.Pointer[Config]
}

// Open loads the configuration at path, or synthesizes and persists defaults
// when the file is missing or unreadable. Opening never fails on bad file
// contents; the error is logged and defaults take over, so startup is never
// blocked by a corrupt config.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger.Named("config")}

	cfg, err := s.loadFromDisk()
	if err != nil {
		s.logger.Warn("config unreadable, falling back to defaults",
			zap.String("path", path), zap.Error(err))
		cfg = Default()
		if err := s.persist(cfg); err != nil {
			s.logger.Warn("persisting default config failed", zap.Error(err))
		}
	}

	s.current.Store(cfg)
	return s, nil
}

func (s *Store) loadFromDisk() (*Config, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if perr := s.persist(cfg); perr != nil {
				s.logger.Warn("persisting default config failed", zap.Error(perr))
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("stat config: %w", err)
	}

	raw, err := readFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Snapshot returns the current configuration. The returned value is shared
// and must not be mutated; Update clones before changing anything.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// Validate validates the currently served configuration.
func (s *Store) Validate() Report {
	return s.Snapshot().Validate()
}

// Threshold returns the classification threshold for a category from the
// current snapshot.
func (s *Store) Threshold(category string) float64 {
	return s.Snapshot().Threshold(category)
}

// MinimumConfidence returns the global confidence floor from the current
// snapshot.
func (s *Store) MinimumConfidence() float64 {
	return s.Snapshot().ClassificationThresholds.MinimumConfidence
}

// Update applies typed field changes to one configuration section. Values
// are coerced per field kind: floats for thresholds and weights, ints for
// timeouts and batch sizes, bools for flags. Unknown fields are ignored; an
// unknown section or an uncoercible value for a recognized field is an
// error. The candidate is validated before it is persisted and swapped in;
// hard issues reject the whole update.
func (s *Store) Update(section string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.Snapshot().Clone()
	if err := applyFields(candidate, section, fields); err != nil {
		return err
	}

	if report := candidate.Validate(); !report.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, report.Issues)
	}

	candidate.LastUpdated = time.Now().Format(time.RFC3339)
	if err := s.persist(candidate); err != nil {
		// In-memory state still advances; the data-loss window is the
		// unwritten file, per the persistence error contract.
		s.logger.Error("persisting config update failed", zap.Error(err))
	}
	s.current.Store(candidate)
	s.logger.Info("config updated", zap.String("section", section), zap.Int("fields", len(fields)))
	return nil
}

// applyFields coerces and assigns recognized fields within a section.
func applyFields(cfg *Config, section string, fields map[string]any) error {
	switch section {
	case "classification_thresholds":
		targets := map[string]*float64{
			"bug_threshold":       &cfg.ClassificationThresholds.BugThreshold,
			"feature_threshold":   &cfg.ClassificationThresholds.FeatureThreshold,
			"praise_threshold":    &cfg.ClassificationThresholds.PraiseThreshold,
			"complaint_threshold": &cfg.ClassificationThresholds.ComplaintThreshold,
			"spam_threshold":      &cfg.ClassificationThresholds.SpamThreshold,
			"minimum_confidence":  &cfg.ClassificationThresholds.MinimumConfidence,
		}
		return assignFloats(targets, fields)
	case "priority_weights":
		targets := map[string]*float64{
			"bug_severity_weight":         &cfg.PriorityWeights.BugSeverityWeight,
			"user_impact_weight":          &cfg.PriorityWeights.UserImpactWeight,
			"technical_complexity_weight": &cfg.PriorityWeights.TechnicalComplexityWeight,
			"business_priority_weight":    &cfg.PriorityWeights.BusinessPriorityWeight,
		}
		return assignFloats(targets, fields)
	case "quality_thresholds":
		targets := map[string]*float64{
			"minimum_quality_score":   &cfg.QualityThresholds.MinimumQualityScore,
			"auto_approve_threshold":  &cfg.QualityThresholds.AutoApproveThreshold,
			"manual_review_threshold": &cfg.QualityThresholds.ManualReviewThreshold,
			"reject_threshold":        &cfg.QualityThresholds.RejectThreshold,
		}
		return assignFloats(targets, fields)
	case "agent_settings":
		bools := map[string]*bool{
			"enable_bug_analysis":         &cfg.AgentSettings.EnableBugAnalysis,
			"enable_feature_extraction":   &cfg.AgentSettings.EnableFeatureExtraction,
			"enable_quality_review":       &cfg.AgentSettings.EnableQualityReview,
			"enable_technical_extraction": &cfg.AgentSettings.EnableTechnicalExtraction,
		}
		ints := map[string]*int{
			"classification_timeout":     &cfg.AgentSettings.ClassificationTimeout,
			"bug_analysis_timeout":       &cfg.AgentSettings.BugAnalysisTimeout,
			"feature_extraction_timeout": &cfg.AgentSettings.FeatureExtractionTimeout,
			"quality_review_timeout":     &cfg.AgentSettings.QualityReviewTimeout,
		}
		if err := assignBools(bools, fields); err != nil {
			return err
		}
		return assignInts(ints, fields)
	case "processing_rules":
		bools := map[string]*bool{
			"skip_low_confidence_items":          &cfg.ProcessingRules.SkipLowConfidenceItems,
			"auto_categorize_spam":               &cfg.ProcessingRules.AutoCategorizeSpam,
			"require_manual_review_for_critical": &cfg.ProcessingRules.RequireManualReviewForCritical,
		}
		ints := map[string]*int{
			"batch_size":  &cfg.ProcessingRules.BatchSize,
			"max_retries": &cfg.ProcessingRules.MaxRetries,
		}
		if err := assignBools(bools, fields); err != nil {
			return err
		}
		return assignInts(ints, fields)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
}

func assignFloats(targets map[string]*float64, fields map[string]any) error {
	for name, value := range fields {
		dst, ok := targets[name]
		if !ok {
			continue
		}
		f, ok := coerceFloat(value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
		}
		*dst = f
	}
	return nil
}

func assignInts(targets map[string]*int, fields map[string]any) error {
	for name, value := range fields {
		dst, ok := targets[name]
		if !ok {
			continue
		}
		f, ok := coerceFloat(value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
		}
		*dst = int(f)
	}
	return nil
}

func assignBools(targets map[string]*bool, fields map[string]any) error {
	for name, value := range fields {
		dst, ok := targets[name]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case bool:
			*dst = v
		case string:
			switch v {
			case "true", "1", "yes":
				*dst = true
			case "false", "0", "no":
				*dst = false
			default:
				return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
			}
		case int:
			*dst = v != 0
		case float64:
			*dst = v != 0
		default:
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
		}
	}
	return nil
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// persist writes cfg to the store path as YAML.
func (s *Store) persist(cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Export writes the current configuration to a separate file.
func (s *Store) Export(path string) error {
	data, err := Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("export config: %w", err)
	}
	return nil
}

// Import replaces the current configuration with the contents of path. The
// current store file is snapshotted to <store path>.backup first. The
// imported document is validated; hard issues abort the import and the
// previous configuration remains in effect.
func (s *Store) Import(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Export(s.path + ".backup"); err != nil {
		return fmt.Errorf("backup current config: %w", err)
	}

	raw, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	cfg, err := parse(raw)
	if err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}
	if report := cfg.Validate(); !report.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, report.Issues)
	}

	cfg.LastUpdated = time.Now().Format(time.RFC3339)
	if err := s.persist(cfg); err != nil {
		return err
	}
	s.current.Store(cfg)
	s.logger.Info("config imported", zap.String("from", path))
	return nil
}

// Reset restores the default configuration and persists it.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := Default()
	if err := s.persist(cfg); err != nil {
		return err
	}
	s.current.Store(cfg)
	s.logger.Info("config reset to defaults")
	return nil
}

// Path returns the location of the persisted store file.
func (s *Store) Path() string {
	return s.path
}
