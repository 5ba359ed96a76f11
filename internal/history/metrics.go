package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var feedbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wastewise_feedback_total",
	Help: "Feedback submissions by verdict (correct, incorrect, comment).",
}, []string{"verdict"})
