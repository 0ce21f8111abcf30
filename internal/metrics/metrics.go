package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daylog_reminders_sent_total",
		Help: "Push reminders accepted by a push service.",
	})

	RemindersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daylog_reminders_failed_total",
		Help: "Push reminder deliveries that failed (crypto, network, or non-2xx).",
	})

	DispatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daylog_dispatch_runs_total",
		Help: "Dispatcher invocations by outcome.",
	}, []string{"outcome"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "daylog_dispatch_duration_seconds",
		Help:    "Wall time of one dispatcher invocation.",
		Buckets: prometheus.DefBuckets,
	})
)
