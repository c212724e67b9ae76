package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	ActivationLevels   *prometheus.CounterVec
	CriteriaMatched    prometheus.Histogram
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	LLMEvalsTotal      *prometheus.CounterVec
	LLMEvalDuration    prometheus.Histogram
	LLMCallsTotal      *prometheus.CounterVec
	LLMTokensIn        *prometheus.CounterVec
	LLMTokensOut       *prometheus.CounterVec
	LLMCallDuration    *prometheus.HistogramVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_evaluations_total",
			Help: "Total completed pipeline runs by semantic-phase outcome.",
		}, []string{"llm_outcome"}),
		EvaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acuity_evaluation_duration_seconds",
			Help:    "End-to-end duration of pipeline runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. ~128s
		}, []string{"llm_outcome"}),
		ActivationLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_activation_levels_total",
			Help: "Final activation level recommendations.",
		}, []string{"level"}),
		CriteriaMatched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acuity_criteria_matched",
			Help:    "Matched criteria per completed evaluation.",
			Buckets: prometheus.LinearBuckets(0, 2, 12), // 0 .. 22
		}),
		ExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_extractions_total",
			Help: "Field extraction attempts by outcome.",
		}, []string{"outcome"}),
		ExtractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acuity_extraction_duration_seconds",
			Help:    "Duration of field extraction calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 0.1s .. ~12.8s
		}),
		LLMEvalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_llm_evaluations_total",
			Help: "Semantic evaluation attempts by outcome.",
		}, []string{"outcome"}),
		LLMEvalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acuity_llm_evaluation_duration_seconds",
			Help:    "Duration of semantic evaluation calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s .. ~64s
		}),
		LLMCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_llm_calls_total",
			Help: "Total LLM provider calls by model.",
		}, []string{"model"}),
		LLMTokensIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_llm_tokens_input_total",
			Help: "Total LLM input tokens consumed by model.",
		}, []string{"model"}),
		LLMTokensOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_llm_tokens_output_total",
			Help: "Total LLM output tokens consumed by model.",
		}, []string{"model"}),
		LLMCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acuity_llm_call_duration_seconds",
			Help:    "Duration of individual LLM calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s .. ~64s
		}, []string{"model"}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.ActivationLevels,
		m.CriteriaMatched,
		m.ExtractionsTotal,
		m.ExtractionDuration,
		m.LLMEvalsTotal,
		m.LLMEvalDuration,
		m.LLMCallsTotal,
		m.LLMTokensIn,
		m.LLMTokensOut,
		m.LLMCallDuration,
	)

	return m
}

// Hooks returns pipeline hooks that increment the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnExtraction: func(outcome string, seconds float64) {
			m.ExtractionsTotal.WithLabelValues(outcome).Inc()
			m.ExtractionDuration.Observe(seconds)
		},
		OnLLMEvaluation: func(outcome string, seconds float64) {
			m.LLMEvalsTotal.WithLabelValues(outcome).Inc()
			m.LLMEvalDuration.Observe(seconds)
		},
		OnComplete: func(e *CompleteEvent) {
			outcome := "ok"
			if e.LLMFailed {
				outcome = "llm_failed"
			}
			m.EvaluationsTotal.WithLabelValues(outcome).Inc()
			m.EvaluationDuration.WithLabelValues(outcome).Observe(e.Duration)
			m.ActivationLevels.WithLabelValues(string(e.Level)).Inc()
			m.CriteriaMatched.Observe(float64(len(e.Result.CriteriaMatches)))
		},
	}
}

// ObserveLLMCall records per-call provider usage. Wired into the claude
// client by main.
func (m *Metrics) ObserveLLMCall(model string, inputTokens, outputTokens int64, seconds float64) {
	m.LLMCallsTotal.WithLabelValues(model).Inc()
	m.LLMTokensIn.WithLabelValues(model).Add(float64(inputTokens))
	m.LLMTokensOut.WithLabelValues(model).Add(float64(outputTokens))
	m.LLMCallDuration.WithLabelValues(model).Observe(seconds)
}
