// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TurnsTotal tracks completed turns by intent and failure tag.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total completed conversation turns",
		},
		[]string{"intent", "failure"},
	)

	// TurnDuration tracks end-to-end turn processing time.
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "Turn processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"intent"},
	)

	// RefundsTotal tracks processed refunds.
	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_refunds_total",
			Help: "Total processed refunds",
		},
		[]string{"simulate"},
	)

	// RefundAmount tracks refunded dollar amounts.
	RefundAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_refund_amount_dollars",
			Help:    "Refunded amount per refund in dollars",
			Buckets: []float64{0.99, 1.98, 4.95, 9.90, 19.80, 49.50, 99},
		},
	)

	// LLMCallDuration tracks classifier/extractor call duration.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider", "purpose", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// SessionsActive tracks live sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_sessions_active",
			Help: "Number of active sessions",
		},
	)

	// StoreQueryDuration tracks record-store query duration.
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Record store query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTurn records metrics for one completed turn.
func RecordTurn(intent, failure string, duration float64) {
	TurnsTotal.WithLabelValues(intent, failure).Inc()
	TurnDuration.WithLabelValues(intent).Observe(duration)
}

// RecordRefund records a processed refund amount.
func RecordRefund(amount float64, simulate bool) {
	label := "false"
	if simulate {
		label = "true"
	}
	RefundsTotal.WithLabelValues(label).Inc()
	RefundAmount.Observe(amount)
}
