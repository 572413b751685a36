package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	FollowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_transitions_total",
		Help: "Follow request state transitions, by operation and resulting status",
	}, []string{"operation", "status"})

	FollowRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_rejections_total",
		Help: "Follow operations refused by a guard, by operation and reason",
	}, []string{"operation", "reason"})

	FollowRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "follow_transaction_retries_total",
		Help: "Follow transactions replayed after losing a race on the pair's unique index",
	})

	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_notifications_total",
		Help: "Follow request notifications, by outcome (sent, failed, dropped)",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(FollowTransitions)
	prometheus.MustRegister(FollowRejections)
	prometheus.MustRegister(FollowRetries)
	prometheus.MustRegister(Notifications)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
