package classify

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// Category keyword sets. One point per keyword present in the lower-cased
// text, regardless of how many times it occurs. The sets are fixed; tuning
// happens through the thresholds, not the vocabulary.
var keywordSets = map[feedback.Category][]string{
	feedback.CategoryBug: {
		"crash", "error", "bug", "issue", "problem", "broken", "not working",
		"freezes", "stuck", "fails", "wrong", "incorrect", "lost data",
	},
	feedback.CategoryFeature: {
		"please add", "would love", "suggestion", "feature request",
		"missing", "need", "want", "wish", "improve", "enhancement",
	},
	feedback.CategoryPraise: {
		"amazing", "great", "love", "perfect", "excellent", "awesome",
		"fantastic", "wonderful", "best", "recommended",
	},
	feedback.CategoryComplaint: {
		"expensive", "slow", "poor", "bad", "terrible", "horrible",
		"disappointed", "frustrated", "angry",
	},
	feedback.CategorySpam: {
		"click here", "www.", "money", "deal", "offer", "contact us",
		"asdf", "random",
	},
}

// RuleClassifier is the deterministic keyword classifier.
type RuleClassifier struct {
	thresholds Thresholds
}

// NewRuleClassifier creates the rule-based classifier with the given live
// threshold source.
func NewRuleClassifier(thresholds Thresholds) *RuleClassifier {
	return &RuleClassifier{thresholds: thresholds}
}

// Name implements Classifier.
func (c *RuleClassifier) Name() string { return "rule" }

// Available implements Classifier. The rule classifier has no external
// dependencies and is always available.
func (c *RuleClassifier) Available() bool { return true }

// Classify implements Classifier. The winning category is the arg-max of the
// per-category keyword scores; ties break by classification order, so an
// all-zero text lands on Bug with confidence 0. If the raw confidence misses
// both the category threshold and the global minimum, the item demotes to
// Uncertain with a halved reported confidence.
func (c *RuleClassifier) Classify(_ context.Context, text string) (Result, error) {
	lower := strings.ToLower(text)

	scores := make(map[feedback.Category]int, 5)
	total := 0
	for category, keywords := range keywordSets {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		scores[category] = score
		total += score
	}

	category := argmax(scores)
	raw := float64(scores[category]) / float64(max(1, total))
	confidence := raw * 100

	threshold := c.thresholds.Threshold(string(category))
	meets := raw >= threshold
	if !meets && raw < c.thresholds.MinimumConfidence() {
		category = feedback.CategoryUncertain
		// Asymmetric trust penalty: demoted items report half the raw
		// confidence rather than the full score.
		confidence = raw * 50
	}

	return Result{
		Category:       category,
		Confidence:     confidence,
		Scores:         scores,
		ThresholdUsed:  threshold,
		MeetsThreshold: meets,
	}, nil
}

// argmax returns the highest-scoring category, breaking ties by the fixed
// classification order.
func argmax(scores map[feedback.Category]int) feedback.Category {
	best := feedback.CategoryBug
	bestScore := -1
	for _, category := range feedback.Categories() {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}
	return best
}
