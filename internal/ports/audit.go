package ports

import (
	"context"
	"time"
)

// Audit record categories
const (
	AuditContentGeneration   = "content-generation"
	AuditEvaluation          = "evaluation"
	AuditVariantGeneration   = "variant-generation"
	AuditPromptEvaluation    = "prompt-evaluation"
	AuditOptimizationSummary = "optimization-summary"
	AuditDigestGeneration    = "digest-generation"
	AuditDigestFactCheck     = "digest-fact-check"
)

// AuditRecord is one side-channel entry: a prompt/response pair or a report.
type AuditRecord struct {
	Category    string    `json:"category" msgpack:"category"`
	Payload     string    `json:"payload" msgpack:"payload"`
	CandidateID string    `json:"candidate_id,omitempty" msgpack:"candidate_id,omitempty"`
	Generation  *int      `json:"generation,omitempty" msgpack:"generation,omitempty"`
	RunID       string    `json:"run_id,omitempty" msgpack:"run_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" msgpack:"created_at"`
}

// AuditSink persists audit records and returns where each one landed.
// Callers treat failures as non-fatal.
type AuditSink interface {
	Record(ctx context.Context, record AuditRecord) (string, error)
}

type runIDKey struct{}

// WithRunID tags ctx so audit records written under it carry the run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id set by WithRunID, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
