// Package analysis holds the category-gated enrichment stages: bug analysis
// (severity, reproduction, technical details) and feature analysis (impact,
// complexity, user benefit). Each analyzer no-ops cleanly outside its
// category, returning an explicit all-N/A result that the audit trail
// records as a skip decision.
package analysis
