// Package feedback defines the domain types shared across the triage
// pipeline: raw feedback items, classification categories, priority levels,
// and the assembled ticket record.
package feedback
