package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsProcessed counts items by their classified category.
	// Labels: category (Bug, Feature Request, Praise, Complaint, Spam, Uncertain)
	ItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triaged",
			Subsystem: "pipeline",
			Name:      "items_total",
			Help:      "Total number of feedback items processed by category",
		},
		[]string{"category"},
	)

	// TicketsCreated counts assembled tickets by priority.
	// Labels: priority (Critical, High, Medium, Low)
	TicketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triaged",
			Subsystem: "pipeline",
			Name:      "tickets_total",
			Help:      "Total number of tickets created by priority",
		},
		[]string{"priority"},
	)

	// StageDuration tracks per-stage processing time.
	// Labels: stage (classification, bug_analysis, ...)
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "triaged",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// ItemFailures counts items that failed hard and were skipped.
	ItemFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triaged",
			Subsystem: "pipeline",
			Name:      "item_failures_total",
			Help:      "Total number of items that failed processing and were skipped",
		},
	)

	// ItemsSkipped counts items skipped by processing rules.
	// Labels: reason (low_confidence)
	ItemsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triaged",
			Subsystem: "pipeline",
			Name:      "items_skipped_total",
			Help:      "Total number of items skipped by processing rules",
		},
		[]string{"reason"},
	)
)
