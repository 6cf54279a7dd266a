/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GenerationRunsTotal counts schedule generation runs per template.
	GenerationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoscheduler_generation_runs_total",
		Help: "Number of schedule generation runs",
	}, []string{"template"})

	// GenerationDroppedSlotsTotal counts category slots dropped because the
	// media pool was empty or fully excluded.
	GenerationDroppedSlotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoscheduler_generation_dropped_slots_total",
		Help: "Category slots dropped during resolution",
	}, []string{"template"})

	// GenerationDuration observes wall time of a generation run.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autoscheduler_generation_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"template"})

	// SyncRunsTotal counts synchronizer runs by terminal result.
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoscheduler_sync_runs_total",
		Help: "Number of synchronizer runs by result",
	}, []string{"result"})

	// SyncStatementsTotal counts statements executed per store.
	SyncStatementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoscheduler_sync_statements_total",
		Help: "Statements executed against the stores",
	}, []string{"store"})

	// MirrorStatementFailuresTotal counts best-effort mirror statement
	// failures that were logged and skipped.
	MirrorStatementFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autoscheduler_mirror_statement_failures_total",
		Help: "Local mirror statements that failed and were skipped",
	})

	// ValidatorRunsTotal counts reconciliation runs by result.
	ValidatorRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoscheduler_validator_runs_total",
		Help: "Number of reconciliation validator runs by result",
	}, []string{"result"})

	// RefAllocatorRetriesTotal counts schedule reference draws rejected as
	// collisions.
	RefAllocatorRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autoscheduler_ref_allocator_retries_total",
		Help: "Schedule reference draws that collided and were retried",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
