package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scanDecisionsTotal counts expansion gate outcomes.
	// Labels: expanded (true, false)
	scanDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "scan",
		Name:      "decisions_total",
		Help:      "Contextual scans by expansion decision",
	}, []string{"expanded"})

	// triggersDetectedTotal counts detected triggers by category.
	triggersDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "scan",
		Name:      "triggers_total",
		Help:      "Scan triggers detected by category",
	}, []string{"category"})
)
