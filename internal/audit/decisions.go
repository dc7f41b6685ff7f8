package audit

import (
	"fmt"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// Per-stage entry constructors. These keep the action_type, decision_point,
// and reasoning vocabulary stable so downstream analysis of historical logs
// keeps working.

// Classification records the classifier's category decision.
func Classification(sessionID string, item feedback.Item, category feedback.Category, conf float64, durationMS float64) Entry {
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StageClassification,
		ActionType:    "classification",
		DecisionPoint: "feedback_categorization",
		Input:         item.Text,
		Output:        map[string]any{"category": string(category), "confidence": conf},
		Confidence:    confidence(conf),
		Reasoning:     fmt.Sprintf("Classified feedback as '%s' based on text patterns and keywords", category),
		DurationMS:    durationMS,
		Success:       true,
		Metadata:      map[string]any{"text_length": len(item.Text)},
	}
}

// BugAnalysis records the bug analyzer's decision, including explicit skips.
func BugAnalysis(sessionID string, item feedback.Item, isBug bool, severity, prio, reproduction string, durationMS float64) Entry {
	decision := "skip_non_bug"
	reasoning := "Analyzed as non-bug item"
	if isBug {
		decision = "analyze_bug"
		reasoning = fmt.Sprintf("Analyzed as bug report with severity: %s, priority: %s", severity, prio)
	}
	hasSteps := reproduction == "Contains reproduction steps"
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StageBugAnalysis,
		ActionType:    "bug_analysis",
		DecisionPoint: decision,
		Input:         item.Text,
		Output: map[string]any{
			"is_bug":                 isBug,
			"severity":               severity,
			"priority":               prio,
			"has_reproduction_steps": hasSteps,
		},
		Reasoning:  reasoning,
		DurationMS: durationMS,
		Success:    true,
		Metadata:   map[string]any{"reproduction_steps_available": hasSteps},
	}
}

// FeatureAnalysis records the feature analyzer's decision, including skips.
func FeatureAnalysis(sessionID string, item feedback.Item, isFeature bool, impact, complexity, benefit string, durationMS float64) Entry {
	decision := "skip_non_feature"
	reasoning := "Analyzed as non-feature item"
	if isFeature {
		decision = "analyze_feature"
		reasoning = fmt.Sprintf("Analyzed as feature request with impact: %s, complexity: %s", impact, complexity)
	}
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StageFeatureAnalysis,
		ActionType:    "feature_analysis",
		DecisionPoint: decision,
		Input:         item.Text,
		Output: map[string]any{
			"is_feature":   isFeature,
			"impact":       impact,
			"complexity":   complexity,
			"user_benefit": benefit,
		},
		Reasoning:  reasoning,
		DurationMS: durationMS,
		Success:    true,
	}
}

// PriorityDecision records the priority cascade outcome.
func PriorityDecision(sessionID string, item feedback.Item, category feedback.Category, prio feedback.Priority, durationMS float64) Entry {
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StagePriority,
		ActionType:    "priority_assignment",
		DecisionPoint: "determine_priority",
		Input:         item.Text,
		Output:        map[string]any{"priority": string(prio)},
		Reasoning:     fmt.Sprintf("Assigned '%s' priority based on category '%s' and content analysis", prio, category),
		DurationMS:    durationMS,
		Success:       true,
		Metadata:      map[string]any{"category": string(category)},
	}
}

// TechnicalExtraction records the technical-detail extractor outcome.
func TechnicalExtraction(sessionID string, item feedback.Item, details string, hasInfo bool, durationMS float64) Entry {
	reasoning := "No technical details in feedback text"
	if hasInfo {
		reasoning = "Found technical details in feedback text"
	}
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StageTechnical,
		ActionType:    "technical_extraction",
		DecisionPoint: "extract_technical_info",
		Input:         item.Text,
		Output:        map[string]any{"technical_details": details},
		Reasoning:     reasoning,
		DurationMS:    durationMS,
		Success:       true,
		Metadata:      map[string]any{"has_technical_info": hasInfo},
	}
}

// TicketCreation records the assembler outcome.
func TicketCreation(sessionID string, item feedback.Item, title string, category feedback.Category, prio feedback.Priority, durationMS float64) Entry {
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StageTicketCreation,
		ActionType:    "ticket_creation",
		DecisionPoint: "generate_ticket",
		Input:         fmt.Sprintf("category=%s priority=%s", category, prio),
		Output:        map[string]any{"title": title, "ticket_id": feedback.TicketID(item.SourceID)},
		Reasoning:     fmt.Sprintf("Created '%s' ticket with '%s' priority", category, prio),
		DurationMS:    durationMS,
		Success:       true,
		Metadata:      map[string]any{"category": string(category), "priority": string(prio)},
	}
}

// QualityReview records the reviewer verdict.
func QualityReview(sessionID string, item feedback.Item, score float64, status string, issues []string, durationMS float64) Entry {
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         StageQualityReview,
		ActionType:    "quality_review",
		DecisionPoint: "assess_quality",
		Input:         "ticket-" + item.SourceID,
		Output: map[string]any{
			"quality_score": score,
			"status":        status,
			"issues_count":  len(issues),
		},
		Confidence: confidence(score),
		Reasoning:  fmt.Sprintf("Quality assessment: %s with score %g%% (%d issues found)", status, score, len(issues)),
		DurationMS: durationMS,
		Success:    true,
		Metadata:   map[string]any{"issues": issues, "status": status},
	}
}

// StageFailure records a stage that raised internally. The pipeline emits
// exactly one entry per stage per item even on failure.
func StageFailure(sessionID string, item feedback.Item, stage Stage, err error, durationMS float64) Entry {
	return Entry{
		SessionID:     sessionID,
		SourceID:      item.SourceID,
		SourceType:    item.SourceType,
		Stage:         stage,
		ActionType:    string(stage),
		DecisionPoint: "stage_failure",
		Input:         item.Text,
		Output:        map[string]any{},
		Reasoning:     "Stage failed; item skipped",
		DurationMS:    durationMS,
		Success:       false,
		Error:         err.Error(),
	}
}

// SessionSummary records the end-of-batch tally.
func SessionSummary(sessionID string, total, succeeded int, durationMS float64) Entry {
	rate := 0.0
	if total > 0 {
		rate = 100.0 * float64(succeeded) / float64(total)
	}
	return Entry{
		SessionID:     sessionID,
		SourceID:      "SESSION_" + clip(sessionID, 8),
		SourceType:    "session_summary",
		Stage:         StageSessionSummary,
		ActionType:    "session_summary",
		DecisionPoint: "summarize_session",
		Output: map[string]any{
			"total_items":   total,
			"success_count": succeeded,
		},
		Confidence: confidence(rate),
		Reasoning:  fmt.Sprintf("Completed %d/%d", succeeded, total),
		DurationMS: durationMS,
		Success:    true,
	}
}
