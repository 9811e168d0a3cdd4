package actions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Subsystem: "actions",
			Name:      "dispatched_total",
			Help:      "Edit commands dispatched to a document host, by type and outcome.",
		},
		[]string{"type", "status"},
	)

	actionsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Subsystem: "actions",
			Name:      "skipped_total",
			Help:      "Directives dropped by the parser, by reason.",
		},
		[]string{"reason"},
	)
)
