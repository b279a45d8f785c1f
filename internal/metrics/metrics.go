package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetings",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "meetings",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetings",
		Subsystem: "booking",
		Name:      "conflicts_total",
		Help:      "Bookings rejected or skipped because the room was taken.",
	}, []string{"operation"})
	RecurringOccurrences = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetings",
		Subsystem: "booking",
		Name:      "recurring_occurrences_total",
		Help:      "Recurring occurrences by outcome.",
	}, []string{"result"})

	AuditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meetings",
		Subsystem: "audit",
		Name:      "events_dropped_total",
		Help:      "Audit events dropped because the queue was full.",
	})
)
