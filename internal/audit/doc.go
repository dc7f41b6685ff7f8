// Package audit records one append-only decision entry per pipeline stage
// per item. Entries are written to the sink immediately, one JSON line each,
// so a crash mid-batch loses at most the in-flight entry. Session-level
// aggregates are computed on demand by filtering the retained entries by
// session ID.
package audit
