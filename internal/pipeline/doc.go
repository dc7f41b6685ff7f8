// Package pipeline sequences the triage stages for single items and batches.
// Each item passes through classification, bug analysis, feature analysis,
// priority scoring, technical extraction, ticket assembly, and quality
// review; every stage emits exactly one audit entry regardless of outcome.
// Batches fan out to a bounded worker pool and preserve input order in the
// result set.
package pipeline
