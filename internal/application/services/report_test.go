package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longregen/dailybrief/internal/domain/models"
)

func TestRenderEvaluationReport(t *testing.T) {
	parent := models.NewSeedCandidate("seed")
	c := models.NewVariantCandidate("original-v1-gen1", parent, ApproachFactuality, "child prompt")
	e := NewFallbackEvaluation("the response", models.FallbackDecodeFailed)
	require.NoError(t, c.Attach(e))

	out := RenderEvaluationReport(c, e)
	assert.True(t, strings.HasPrefix(out, "PROMPT EVALUATION REPORT\n"))
	assert.Contains(t, out, "Generation: 1\n")
	assert.Contains(t, out, "Prompt ID: original-v1-gen1\n")
	assert.Contains(t, out, "Parent ID: original\n")
	assert.Contains(t, out, "Fallback: decode_failed\n")
	assert.Contains(t, out, "Overall Score: 5.0/10\n")
	assert.Contains(t, out, "child prompt\n")
	assert.Contains(t, out, "the response\n")
	assert.Contains(t, out, "1. Add more specific guidelines\n2. Include better examples\n3. Enhance flexibility\n")
}

func TestRenderSummary(t *testing.T) {
	seed := models.NewSeedCandidate("seed prompt")
	require.NoError(t, seed.Attach(&models.Evaluation{Scores: models.NewScores(5, 5, 5)}))
	child := models.NewVariantCandidate("original-v1-gen1", seed, ApproachQuantity, "better prompt")
	require.NoError(t, child.Attach(&models.Evaluation{Scores: models.NewScores(8, 6, 7)}))

	report := models.NewOptimizationReport("run_1", 2, models.StopBudgetExhausted, []*models.Candidate{child, seed})
	report.TargetDate = "Friday, 16 October 2026"

	out := RenderSummary(report, "/tmp")
	assert.Contains(t, out, "Target Date: Friday, 16 October 2026\n")
	assert.Contains(t, out, "Total Evaluations: 2\n")
	assert.Contains(t, out, "1. original-v1-gen1 - Score: 7.0/10 (Factuality: 8.0, Quantity: 6.0, Genericity: 7.0)\n")
	assert.Contains(t, out, "2. original - Score: 5.0/10")
	assert.Contains(t, out, "better prompt\n")
	assert.Contains(t, out, "Original Score: 5.0/10\n")
	assert.Contains(t, out, "Improvement: +2.0 points\n")
	assert.Contains(t, out, "Records are saved in: /tmp\n")
}

func TestRenderSummary_Empty(t *testing.T) {
	report := models.NewOptimizationReport("run_1", 0, models.StopNoEvaluated, nil)
	out := RenderSummary(report, "")
	assert.Contains(t, out, "No evaluations completed\n")
	assert.Contains(t, out, "Original Score: N/A/10\n")
	assert.Contains(t, out, "Improvement: N/A points\n")
	assert.NotContains(t, out, "Records are saved in")
}

func TestFormatImprovement(t *testing.T) {
	up, down := 1.26, -0.3
	assert.Equal(t, "+1.3", FormatImprovement(&up))
	assert.Equal(t, "-0.3", FormatImprovement(&down))
	assert.Equal(t, "N/A", FormatImprovement(nil))
}
