package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/tracing"
	"github.com/longregen/dailybrief/internal/application/services"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/domain/models"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
)

// DefaultBatchSize caps how many candidates are evaluated concurrently.
const DefaultBatchSize = 5

// OptimizationConfig configures one optimizer run.
type OptimizationConfig struct {
	SeedPrompt string
	BatchSize  int

	// TargetDate and LogLocation only decorate the summary.
	TargetDate  string
	LogLocation string
}

// RunOptimization drives the evaluate / rank / mutate loop until the evaluation
// budget is spent or no new variants appear.
type RunOptimization struct {
	evaluator ports.CandidateEvaluator
	variants  ports.VariantSource
	sink      ports.AuditSink
	ids       ports.IDGenerator
	log       *logger.Logger
	config    OptimizationConfig
}

// NewRunOptimization creates a new RunOptimization usecase with required dependencies.
func NewRunOptimization(
	evaluator ports.CandidateEvaluator,
	variants ports.VariantSource,
	sink ports.AuditSink,
	ids ports.IDGenerator,
	log *logger.Logger,
	config OptimizationConfig,
) *RunOptimization {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RunOptimization{
		evaluator: evaluator,
		variants:  variants,
		sink:      sink,
		ids:       ids,
		log:       log,
		config:    config,
	}
}

// Execute runs the loop and returns the ranked report. It performs at most
// maxEvaluations evaluations. Cancelling ctx stops the loop between rounds and
// still yields a report.
func (uc *RunOptimization) Execute(ctx context.Context, maxEvaluations int) (*models.OptimizationReport, error) {
	if maxEvaluations < 1 {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, fmt.Sprintf("max evaluations must be at least 1, got %d", maxEvaluations))
	}
	if strings.TrimSpace(uc.config.SeedPrompt) == "" {
		return nil, domain.NewDomainError(domain.ErrEmptyContent, "seed prompt cannot be empty")
	}

	run := models.NewOptimizationRun(uc.ids.GenerateRunID(), maxEvaluations)
	ctx = ports.WithRunID(ctx, run.ID)
	ctx, span := tracing.Start(ctx, "optimizer.run",
		attribute.String("run.id", run.ID),
		attribute.Int("max_evaluations", maxEvaluations),
	)
	defer span.End()

	log := uc.log.With("run", run.ID)
	log.Info("Optimization started", "max_evaluations", maxEvaluations, "batch_size", uc.config.BatchSize)

	pool := models.NewCandidatePool()
	pool.Add(models.NewSeedCandidate(uc.config.SeedPrompt))

	stopReason := uc.loop(ctx, run, pool, log)

	ranked := pool.Ranked()
	if len(ranked) == 0 {
		run.MarkFailed(models.StopNoEvaluated)
		err := domain.NewDomainError(domain.ErrNoEvaluations, "run "+run.ID)
		tracing.End(span, err)
		return nil, err
	}
	run.MarkCompleted(stopReason)

	report := models.NewOptimizationReport(run.ID, run.Evaluations, stopReason, ranked)
	report.TargetDate = uc.config.TargetDate
	report.SummaryLocation = uc.recordSummary(context.WithoutCancel(ctx), report, log)
	metrics.BestScore.Set(report.BestScore)

	span.SetAttributes(
		attribute.Int("evaluations", run.Evaluations),
		attribute.String("stop_reason", stopReason),
		attribute.Float64("best_score", report.BestScore),
	)
	log.Info("Optimization completed",
		"evaluations", run.Evaluations,
		"rounds", run.Rounds,
		"candidates", pool.Len(),
		"stop_reason", stopReason,
		"best", report.Best().ID,
		"best_score", report.BestScore,
		"improvement", services.FormatImprovement(report.Improvement),
	)
	return report, nil
}

func (uc *RunOptimization) loop(ctx context.Context, run *models.OptimizationRun, pool *models.CandidatePool, log *logger.Logger) string {
	for run.Evaluations < run.MaxEvaluations {
		if err := ctx.Err(); err != nil {
			log.Warn("Optimization interrupted", "error", err, "evaluations", run.Evaluations)
			return models.StopCancelled
		}

		if pending := pool.Pending(); len(pending) > 0 {
			n := min(uc.config.BatchSize, run.MaxEvaluations-run.Evaluations, len(pending))
			uc.evaluateBatch(ctx, pending[:n])
			run.Evaluations += n
			run.Rounds++
			log.Debug("Batch evaluated", "size", n, "evaluations", run.Evaluations)
			continue
		}

		ranked := pool.Ranked()
		if len(ranked) == 0 {
			return models.StopNoEvaluated
		}

		parent := ranked[0]
		proposed := uc.variants.Generate(context.WithoutCancel(ctx), parent)
		added := uc.addVariants(pool, proposed, log)
		log.Info("Variants added", "parent", parent.ID, "proposed", len(proposed), "added", added)
		if added == 0 {
			return models.StopNoProgress
		}
	}
	return models.StopBudgetExhausted
}

// evaluateBatch scores every candidate of batch concurrently and waits for all of them.
func (uc *RunOptimization) evaluateBatch(ctx context.Context, batch []*models.Candidate) {
	bctx := context.WithoutCancel(ctx)
	var g errgroup.Group
	for _, c := range batch {
		g.Go(func() error {
			uc.evaluator.Evaluate(bctx, c)
			return nil
		})
	}
	_ = g.Wait()
}

// addVariants appends proposed candidates, including prompts already seen
// under another id. Colliding ids get a "-rN" suffix. It returns the number added.
func (uc *RunOptimization) addVariants(pool *models.CandidatePool, proposed []*models.Candidate, log *logger.Logger) int {
	added := 0
	for _, c := range proposed {
		if c == nil || c.IsEvaluated() {
			continue
		}
		base := c.ID
		for n := 2; pool.HasID(c.ID); n++ {
			c.ID = fmt.Sprintf("%s-r%d", base, n)
		}
		if c.ID != base {
			log.Debug("Variant id suffixed", "proposed", base, "id", c.ID)
		}
		if pool.Add(c) {
			added++
		}
	}
	return added
}

func (uc *RunOptimization) recordSummary(ctx context.Context, report *models.OptimizationReport, log *logger.Logger) string {
	if uc.sink == nil {
		return ""
	}
	location, err := uc.sink.Record(ctx, ports.AuditRecord{
		Category:  ports.AuditOptimizationSummary,
		Payload:   services.RenderSummary(report, uc.config.LogLocation),
		RunID:     report.RunID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Warn("Summary record failed", "error", err)
	}
	return location
}
