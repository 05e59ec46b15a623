package activity

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	counterReplyCount = "reply_count"
	counterShareCount = "share_count"

	directionUp   = "up"
	directionDown = "down"
)

var (
	counterAdjustments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "go_activities",
		Subsystem: "counters",
		Name:      "adjustments_total",
		Help:      "Number of denormalized counter adjustments applied.",
	}, []string{"counter", "direction"})

	counterClamps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "go_activities",
		Subsystem: "counters",
		Name:      "clamped_total",
		Help:      "Number of decrements clamped because the counter was already at or below zero.",
	}, []string{"counter"})
)

func init() {
	prometheus.MustRegister(counterAdjustments, counterClamps)
}

func recordAdjustment(counter, direction string) {
	counterAdjustments.WithLabelValues(counter, direction).Inc()
}

func recordClamp(counter string) {
	counterClamps.WithLabelValues(counter).Inc()
}
