package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var turnsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "assistant",
		Name:      "turns_total",
		Help:      "Assistant turns by mode and stage (prepare or apply).",
	},
	[]string{"mode", "stage"},
)
