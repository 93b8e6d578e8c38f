// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Optimizer metrics
	OptimizerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_optimizer_runs_total",
			Help: "Total number of collision-avoidance optimizer runs",
		},
	)

	OptimizerSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_optimizer_skipped_total",
			Help: "Optimizer runs short-circuited by the significant-overlap check",
		},
	)

	OptimizerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "label_optimizer_duration_seconds",
			Help:    "Duration of optimizer runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	OptimizerMovedLabels = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_optimizer_moved_labels_total",
			Help: "Labels relocated away from their default offset by the optimizer",
		},
	)

	// Position store metrics
	StoreSaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_store_saves_total",
			Help: "Total number of position store save operations",
		},
	)

	StoreLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_store_loads_total",
			Help: "Total number of position store loads that returned records",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_store_errors_total",
			Help: "Position store failures by operation",
		},
		[]string{"operation"}, // "save", "load", "delete"
	)

	// Interaction metrics
	DragSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_drag_sessions_total",
			Help: "Total number of completed drag sessions",
		},
	)

	DragRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_drag_rejected_total",
			Help: "Drag starts rejected because a session was already active",
		},
	)

	IdentityFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "label_identity_failures_total",
			Help: "Labels skipped during ingestion because no stable identity could be derived",
		},
	)

	// Websocket surface metrics
	SurfaceConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "label_surface_connections",
			Help: "Currently connected websocket map surfaces",
		},
	)

	HitTestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "label_hittest_duration_seconds",
			Help:    "Round-trip duration of asynchronous hit-test queries",
			Buckets: prometheus.DefBuckets,
		},
	)
)
