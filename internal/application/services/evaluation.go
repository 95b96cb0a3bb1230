package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/tracing"
	"github.com/longregen/dailybrief/internal/domain/models"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
	"github.com/longregen/dailybrief/internal/prompt"
)

// Fallback evaluation content
const (
	FallbackFeedback      = "default evaluation created"
	NoSuggestionsFallback = "No specific improvements identified"
)

// FallbackSuggestions are attached to every fallback evaluation.
var FallbackSuggestions = []string{
	"Add more specific guidelines",
	"Include better examples",
	"Enhance flexibility",
}

// NewFallbackEvaluation returns the neutral evaluation used when a candidate cannot be scored.
func NewFallbackEvaluation(response string, reason models.FallbackReason) *models.Evaluation {
	suggestions := make([]string, len(FallbackSuggestions))
	copy(suggestions, FallbackSuggestions)
	return &models.Evaluation{
		GeneratedResponse:      response,
		Scores:                 models.NeutralScores(),
		Feedback:               FallbackFeedback,
		ImprovementSuggestions: suggestions,
		Fallback:               reason,
	}
}

type scoreSet struct {
	Factuality prompt.Number `json:"factualityScore"`
	Quantity   prompt.Number `json:"quantityScore"`
	Genericity prompt.Number `json:"genericityScore"`
	Overall    prompt.Number `json:"overallScore"`
}

// scoringResult is the scorer's reply. Scores may sit under "scores" or at the top level.
type scoringResult struct {
	Scores *scoreSet `json:"scores"`
	scoreSet
	Analysis                  json.RawMessage `json:"analysis"`
	DetailedFeedback          json.RawMessage `json:"detailedFeedback"`
	ImprovedPromptSuggestions json.RawMessage `json:"improvedPromptSuggestions"`
	PromptImprovements        json.RawMessage `json:"promptImprovements"`
}

func (r *scoringResult) scores() models.Scores {
	pick := func(nested func(*scoreSet) prompt.Number, top prompt.Number) float64 {
		if r.Scores != nil {
			if n := nested(r.Scores); n.Set {
				return n.Value
			}
		}
		return top.Or(models.NeutralScore)
	}
	return models.NewScores(
		pick(func(s *scoreSet) prompt.Number { return s.Factuality }, r.Factuality),
		pick(func(s *scoreSet) prompt.Number { return s.Quantity }, r.Quantity),
		pick(func(s *scoreSet) prompt.Number { return s.Genericity }, r.Genericity),
	)
}

func (r *scoringResult) feedback() string {
	for _, raw := range []json.RawMessage{r.Analysis, r.DetailedFeedback} {
		if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
			continue
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			return buf.String()
		}
		return string(raw)
	}
	return "{}"
}

func (r *scoringResult) suggestions() []string {
	var out []string

	var structured []struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(r.ImprovedPromptSuggestions, &structured); err == nil {
		for _, s := range structured {
			if d := strings.TrimSpace(s.Description); d != "" {
				out = append(out, d)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	var plain []string
	if err := json.Unmarshal(r.PromptImprovements, &plain); err == nil {
		for _, s := range plain {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	return []string{NoSuggestionsFallback}
}

// Evaluator runs a candidate prompt and scores the output with a second model call.
type Evaluator struct {
	generator ports.Generator
	sink      ports.AuditSink
	rubric    Rubric
	log       *logger.Logger
}

func NewEvaluator(generator ports.Generator, sink ports.AuditSink, rubric Rubric, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Evaluator{
		generator: generator,
		sink:      sink,
		rubric:    rubric,
		log:       log,
	}
}

// Evaluate attaches an evaluation to c. Failures degrade to the fallback evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, c *models.Candidate) {
	ctx, span := tracing.Start(ctx, "optimizer.evaluate",
		attribute.String("candidate.id", c.ID),
		attribute.Int("candidate.generation", c.Generation),
	)
	eval := e.evaluate(ctx, c)
	span.SetAttributes(
		attribute.Float64("score.overall", eval.Scores.Overall),
		attribute.String("fallback", string(eval.Fallback)),
	)

	outcome := metrics.OutcomeScored
	switch eval.Fallback {
	case models.FallbackGenerationFailed:
		outcome = metrics.OutcomeGenerationFailed
	case models.FallbackDecodeFailed:
		outcome = metrics.OutcomeDecodeFailed
	}
	metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()

	err := c.Attach(eval)
	if err != nil {
		e.log.Warn("Evaluation not attached", "candidate", c.ID, "error", err)
	} else {
		e.record(ctx, c, ports.AuditPromptEvaluation, RenderEvaluationReport(c, eval))
	}
	tracing.End(span, err)

	e.log.Info("Candidate evaluated",
		"candidate", c.ID,
		"generation", c.Generation,
		"overall", eval.Scores.Overall,
		"fallback", string(eval.Fallback),
	)
}

func (e *Evaluator) evaluate(ctx context.Context, c *models.Candidate) *models.Evaluation {
	response, err := e.generator.Generate(ctx, c.Prompt)
	if err != nil {
		e.log.Warn("Content generation failed", "candidate", c.ID, "error", err)
		return NewFallbackEvaluation("", models.FallbackGenerationFailed)
	}
	e.record(ctx, c, ports.AuditContentGeneration, Exchange(c.Prompt, response))

	scoringPrompt := e.rubric.ScoringPrompt(c.Prompt, response)
	verdict, err := e.generator.Generate(ctx, scoringPrompt)
	if err != nil {
		e.log.Warn("Scoring call failed", "candidate", c.ID, "error", err)
		e.record(ctx, c, ports.AuditEvaluation, Exchange(scoringPrompt, "")+"\nERROR:\n"+err.Error()+"\n")
		return NewFallbackEvaluation(response, models.FallbackGenerationFailed)
	}
	e.record(ctx, c, ports.AuditEvaluation, Exchange(scoringPrompt, verdict))

	var result scoringResult
	if err := prompt.DecodeJSON(verdict, &result); err != nil {
		e.log.Warn("Scoring reply could not be decoded", "candidate", c.ID, "error", err)
		return NewFallbackEvaluation(response, models.FallbackDecodeFailed)
	}

	return &models.Evaluation{
		GeneratedResponse:      response,
		Scores:                 result.scores(),
		Feedback:               result.feedback(),
		ImprovementSuggestions: result.suggestions(),
	}
}

func (e *Evaluator) record(ctx context.Context, c *models.Candidate, category, payload string) {
	generation := c.Generation
	RecordAudit(ctx, e.sink, e.log, ports.AuditRecord{
		Category:    category,
		Payload:     payload,
		CandidateID: c.ID,
		Generation:  &generation,
	})
}

// RecordAudit writes r to sink, logging and swallowing any failure.
func RecordAudit(ctx context.Context, sink ports.AuditSink, log *logger.Logger, r ports.AuditRecord) string {
	if sink == nil {
		return ""
	}
	if r.RunID == "" {
		r.RunID = ports.RunIDFromContext(ctx)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	location, err := sink.Record(ctx, r)
	if err != nil {
		log.Warn("Audit record failed", "category", r.Category, "candidate", r.CandidateID, "error", err)
	}
	return location
}

// Exchange formats a prompt and its reply as one audit payload.
func Exchange(request, response string) string {
	return "PROMPT:\n" + request + "\n\nRESPONSE:\n" + response + "\n"
}
