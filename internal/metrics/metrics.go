// Package metrics defines the process-wide Prometheus collectors.
// The gateway module exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesTotal counts user messages accepted by the store.
	MessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_messages_total",
		Help: "User messages accepted.",
	})

	// CompletionsTotal counts successful provider completions.
	CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_completions_total",
		Help: "Successful provider completions.",
	}, []string{"provider"})

	// ProviderErrorsTotal counts failed provider calls.
	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_provider_errors_total",
		Help: "Failed provider calls.",
	}, []string{"provider"})

	// SummariesTotal counts conversation summaries generated.
	SummariesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_summaries_total",
		Help: "Conversation summaries generated.",
	})

	// SummaryFallbacksTotal counts summarization failures recovered by
	// sending unoptimized history.
	SummaryFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_summary_fallbacks_total",
		Help: "Summarization failures recovered with unoptimized history.",
	})

	// CompletionSeconds observes provider completion latency.
	CompletionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parley_completion_seconds",
		Help:    "Provider completion latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)
