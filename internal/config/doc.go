// Package config owns the validated threshold, weight, and rule
// configuration that governs the triage pipeline.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (CLASSIFICATION_THRESHOLDS_BUG_THRESHOLD, etc.)
//  2. YAML config file
//  3. Hardcoded defaults
//
// The Store serves an immutable snapshot through an atomic pointer so
// in-flight batches always observe a consistent configuration; updates
// validate a candidate, persist it, and swap the pointer. Hard validation
// failures never evict the last known-good snapshot.
package config
