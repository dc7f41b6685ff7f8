package classify

import "fmt"

// Config selects the classifier variant at startup. Provider "rule" (or
// empty, or "disabled") uses the deterministic keyword classifier;
// "anthropic" wires the LLM-backed classifier with the rule classifier as
// its fallback. The choice is made once and never swapped mid-batch.
type Config struct {
	Provider string
	LLM      LLMConfig
}

// New creates the configured classifier.
func New(cfg Config, thresholds Thresholds) (Classifier, error) {
	rule := NewRuleClassifier(thresholds)

	switch cfg.Provider {
	case "", "rule", "disabled":
		return rule, nil
	case "anthropic":
		return NewLLMClassifier(cfg.LLM, thresholds, rule)
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.Provider)
	}
}
