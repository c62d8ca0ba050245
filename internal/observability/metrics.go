// Package observability declares the Prometheus metrics exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// Match run outcomes used as the "outcome" label.
const (
	OutcomeMatched      = "matched"
	OutcomeNoCandidates = "no_candidates"
	OutcomeSkipped      = "skipped"
	OutcomeFailed       = "failed"
)

var (
	MatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "match_runs_total", Help: "Matching runs by outcome"},
		[]string{"outcome"},
	)
	MatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_latency_seconds",
		Help:      "Duration of a matching run",
		Buckets:   prometheus.DefBuckets,
	})
	CouriersNotifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "couriers_notified_total", Help: "Job offers sent to couriers",
	})
	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "notification_failures_total", Help: "Notifications that could not be delivered"},
		[]string{"kind"},
	)

	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "job_transitions_total", Help: "Committed job transitions"},
		[]string{"from", "to"},
	)
	TransitionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "job_transition_rejections_total", Help: "Transitions refused by reason"},
		[]string{"reason"},
	)
	EventPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "event_publish_failures_total", Help: "Domain events that could not be published",
	})
	EventsForwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "events_forwarded_total", Help: "Domain events written to Kafka",
	})
	EventForwardFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "event_forward_failures_total", Help: "Domain events dropped on the way to Kafka"},
		[]string{"reason"},
	)

	ExecutorQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "executor_queue_depth", Help: "Background tasks waiting for a worker",
	})
	ExecutorRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "executor_rejected_total", Help: "Background tasks refused because the queue was full or closed",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
