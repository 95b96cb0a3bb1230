package ports

import (
	"context"

	"github.com/longregen/dailybrief/internal/domain/models"
)

// CandidateEvaluator scores one candidate and attaches the result.
// It never fails: unrecoverable errors yield the neutral fallback evaluation.
type CandidateEvaluator interface {
	Evaluate(ctx context.Context, candidate *models.Candidate)
}

// VariantSource proposes unevaluated children of an evaluated parent.
type VariantSource interface {
	Generate(ctx context.Context, parent *models.Candidate) []*models.Candidate
}
