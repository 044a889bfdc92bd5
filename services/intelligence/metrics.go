package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recoveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventura_ai_recovery_attempts_total",
			Help: "Structured output parse attempts by shape, strategy and outcome",
		},
		[]string{"shape", "strategy", "outcome"},
	)

	intentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventura_ai_intent_outcomes_total",
			Help: "Chat turns by final pipeline state and signal source",
		},
		[]string{"state", "signal"},
	)

	llmLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventura_ai_llm_request_duration_seconds",
			Help:    "Latency of model completions",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"operation", "outcome"},
	)
)
