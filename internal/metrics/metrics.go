// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jiffyapply"

var (
	// ApplicationsCreated counts application records created, by mode (single, bulk).
	ApplicationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_created_total",
		Help:      "Application records created.",
	}, []string{"mode"})

	// QuotaRejections counts creation requests rejected by the quota gate.
	QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_rejections_total",
		Help:      "Creation requests rejected because no free applications remained.",
	}, []string{"mode"})

	// BulkTruncations counts bulk requests that were only partially covered by the quota.
	BulkTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_truncations_total",
		Help:      "Bulk requests trimmed to the remaining free quota.",
	})

	// Subscriptions counts subscription transitions, by status reached.
	Subscriptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_total",
		Help:      "Subscription state transitions.",
	}, []string{"status"})

	// ResumeParses counts resume pipeline outcomes.
	ResumeParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_parses_total",
		Help:      "Resume uploads by outcome (ok, fallback, rejected, extraction_failed, parse_failed, upstream_failed).",
	}, []string{"outcome"})

	// JobSearches counts upstream job board calls by source and outcome.
	JobSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_searches_total",
		Help:      "Upstream job board calls.",
	}, []string{"source", "outcome"})
)
