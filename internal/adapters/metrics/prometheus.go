package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailybrief_llm_requests_total",
		Help: "Total generation requests sent to the model",
	}, []string{"model", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dailybrief_llm_request_duration_seconds",
		Help:    "Generation request duration",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	}, []string{"model"})

	LLMBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dailybrief_llm_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
	})

	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailybrief_optimizer_evaluations_total",
		Help: "Candidate evaluations by outcome",
	}, []string{"outcome"})

	VariantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailybrief_optimizer_variants_total",
		Help: "Prompt variants proposed by source",
	}, []string{"source"})

	BestScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dailybrief_optimizer_best_score",
		Help: "Overall score of the best candidate of the last run",
	})

	AuditRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailybrief_audit_records_total",
		Help: "Audit records written by sink and status",
	}, []string{"sink", "status"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailybrief_notifications_total",
		Help: "Delivered digests by channel and status",
	}, []string{"channel", "status"})

	DigestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailybrief_digest_runs_total",
		Help: "Digest job executions by job and status",
	}, []string{"job", "status"})
)

// Outcome and status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OutcomeScored           = "scored"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeDecodeFailed     = "decode_failed"

	SourceModel    = "model"
	SourceFallback = "fallback"
)

// WriteTextfile flushes the default registry for the node-exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
