package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	sessionsActive        prometheus.Gauge
	sessionsCreatedTotal  prometheus.Counter
	intentsTotal          *prometheus.CounterVec
	evaluationsTotal      *prometheus.CounterVec
	promptQuality         *prometheus.HistogramVec
	playerChoicesTotal    *prometheus.CounterVec
	expertRequestsTotal   *prometheus.CounterVec
	streamConnectionsOpen prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_api_requests_total",
			Help: "Total number of session API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "session_api_latency_seconds",
			Help:    "Latency distribution for session API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_api_errors_total",
			Help: "Total number of error responses returned by session endpoints.",
		}, []string{"method", "route", "status"})

		sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "walkthrough_sessions_active",
			Help: "Sessions created and not yet ended on this node.",
		})

		sessionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walkthrough_sessions_created_total",
			Help: "Total number of walkthrough sessions started.",
		})

		intentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkthrough_intents_total",
			Help: "Intents applied to sessions by outcome.",
		}, []string{"intent", "result"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkthrough_evaluations_total",
			Help: "Simulated evaluations by step kind and status.",
		}, []string{"kind", "status"})

		promptQuality = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walkthrough_prompt_quality",
			Help:    "Prompt quality measured at evaluation time.",
			Buckets: []float64{0, 0.25, 0.5, 0.75, 1},
		}, []string{"kind"})

		playerChoicesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkthrough_player_choices_total",
			Help: "Player choice events by type and correctness.",
		}, []string{"type", "correct"})

		expertRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walkthrough_expert_requests_total",
			Help: "Expert questions by outcome.",
		}, []string{"result"})

		streamConnectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "walkthrough_stream_connections",
			Help: "Open websocket view streams.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			sessionsActive, sessionsCreatedTotal, intentsTotal,
			evaluationsTotal, promptQuality, playerChoicesTotal,
			expertRequestsTotal, streamConnectionsOpen,
		)
	})
}

// APIRequests exposes the counter for session API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for session API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for session API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

func SessionsActive() prometheus.Gauge {
	RegisterMetrics()
	return sessionsActive
}

func SessionsCreated() prometheus.Counter {
	RegisterMetrics()
	return sessionsCreatedTotal
}

// Intents counts intents labelled by name and "ok" or the error class.
func Intents() *prometheus.CounterVec {
	RegisterMetrics()
	return intentsTotal
}

func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

func PromptQuality() *prometheus.HistogramVec {
	RegisterMetrics()
	return promptQuality
}

func PlayerChoices() *prometheus.CounterVec {
	RegisterMetrics()
	return playerChoicesTotal
}

func ExpertRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return expertRequestsTotal
}

func StreamConnections() prometheus.Gauge {
	RegisterMetrics()
	return streamConnectionsOpen
}
