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

	// MessagesReceived tracks inbound chat messages by disposition.
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_received_total",
			Help: "Inbound chat messages by disposition",
		},
		[]string{"disposition"},
	)

	// RepliesSent tracks outbound replies by origin (loop, keyword, default, scheduled).
	RepliesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_replies_sent_total",
			Help: "Outbound replies by origin",
		},
		[]string{"origin"},
	)

	// SendFailures tracks reply delivery failures by send path.
	SendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_send_failures_total",
			Help: "Reply delivery failures by send path",
		},
		[]string{"path"},
	)

	// DedupDrops tracks messages rejected by the dedup guard.
	DedupDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_dedup_drops_total",
			Help: "Messages dropped as duplicates",
		},
	)

	// CompletionDuration tracks completion-service call duration.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Completion-service call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model", "status"},
	)

	// CompletionTokens tracks tokens processed by the completion service.
	CompletionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// ToolCalls tracks tool invocations requested by the model.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_tool_calls_total",
			Help: "Tool invocations by tool name",
		},
		[]string{"tool"},
	)

	// Bookings tracks booking submissions by outcome.
	Bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_bookings_total",
			Help: "Booking submissions by outcome",
		},
		[]string{"outcome"},
	)

	// ScheduledSends tracks scheduler-driven outbound messages.
	ScheduledSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_scheduled_sends_total",
			Help: "Scheduler-driven outbound messages by job",
		},
		[]string{"job"},
	)

	// ConversationsActive tracks conversation keys held in memory.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_conversations_active",
			Help: "Conversation keys currently held in memory",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for a completion-service call.
func RecordCompletion(model, status string, duration float64, tokensIn, tokensOut int) {
	CompletionDuration.WithLabelValues(model, status).Observe(duration)
	CompletionTokens.WithLabelValues(model, "in").Add(float64(tokensIn))
	CompletionTokens.WithLabelValues(model, "out").Add(float64(tokensOut))
}
