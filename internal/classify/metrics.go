package classify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastewise_classifications_total",
		Help: "Stored classifications by category.",
	}, []string{"category"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastewise_classification_failures_total",
		Help: "Failed classification requests by stage (input, vision, archive, category, record).",
	}, []string{"stage"})
)
