package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/tracing"
	"github.com/longregen/dailybrief/internal/domain/models"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
	"github.com/longregen/dailybrief/internal/prompt"
)

// VariantsPerParent is the number of children requested for each parent.
const VariantsPerParent = 3

// Variant approaches
const (
	ApproachFactuality = "Enhanced specificity and real content examples (factuality focus)"
	ApproachQuantity   = "Improved quantity targets and clearer guidelines"
	ApproachGenericity = "Better genericity and flexibility (creative freedom focus)"
)

const (
	factualityEnhancement = "\n\n**ENHANCEMENT: Focus on using real, verifiable content with specific show names and accurate platform assignments.**"
	quantityEnhancement   = "\n\n**ENHANCEMENT: Strictly enforce quantity requirements.**"
	genericityEnhancement = "\n\n**ENHANCEMENT: Allow more creative freedom. Use generic categories like 'Latest blockbuster', 'Popular drama series', 'Trending comedy' instead of requiring specific titles. Encourage plausible fictional content when real titles are uncertain.**"
)

var itemRangePattern = regexp.MustCompile(`Aim for \d+-\d+ items`)

// VariantID names the i-th child (1-based) of parent.
func VariantID(parent *models.Candidate, i int) string {
	return fmt.Sprintf("%s-v%d-gen%d", parent.ID, i, parent.Generation+1)
}

// FallbackVariants derives three deterministic children of parent without a model call.
func FallbackVariants(parent *models.Candidate) []*models.Candidate {
	quantityPrompt := itemRangePattern.ReplaceAllString(parent.Prompt, "Aim for EXACTLY the specified number of items")
	return []*models.Candidate{
		models.NewVariantCandidate(VariantID(parent, 1), parent, ApproachFactuality, parent.Prompt+factualityEnhancement),
		models.NewVariantCandidate(VariantID(parent, 2), parent, ApproachQuantity, quantityPrompt+quantityEnhancement),
		models.NewVariantCandidate(VariantID(parent, 3), parent, ApproachGenericity, parent.Prompt+genericityEnhancement),
	}
}

type variantSpec struct {
	Approach string `json:"approach"`
	Prompt   string `json:"prompt"`
}

// VariantGenerator asks the model for rewrites of an evaluated parent and falls
// back to fixed enhancements when the model cannot deliver.
type VariantGenerator struct {
	generator ports.Generator
	sink      ports.AuditSink
	rubric    Rubric
	log       *logger.Logger
}

func NewVariantGenerator(generator ports.Generator, sink ports.AuditSink, rubric Rubric, log *logger.Logger) *VariantGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &VariantGenerator{
		generator: generator,
		sink:      sink,
		rubric:    rubric,
		log:       log,
	}
}

// Generate returns unevaluated children of parent. It returns nil if parent has no evaluation.
func (g *VariantGenerator) Generate(ctx context.Context, parent *models.Candidate) []*models.Candidate {
	eval := parent.Evaluation()
	if eval == nil {
		g.log.Warn("Variant generation skipped for unevaluated parent", "parent", parent.ID)
		return nil
	}

	ctx, span := tracing.Start(ctx, "optimizer.variants", attribute.String("parent.id", parent.ID))
	defer span.End()

	request := g.rubric.VariantPrompt(parent.Prompt, eval)
	reply, err := g.generator.Generate(ctx, request)
	if err != nil {
		g.log.Warn("Variant generation failed, using fallback variants", "parent", parent.ID, "error", err)
		return g.fallback(parent)
	}
	generation := parent.Generation + 1
	RecordAudit(ctx, g.sink, g.log, ports.AuditRecord{
		Category:    ports.AuditVariantGeneration,
		Payload:     Exchange(request, reply),
		CandidateID: parent.ID,
		Generation:  &generation,
	})

	// Keys other than variantN are ignored, whatever their shape.
	var specs map[string]json.RawMessage
	if err := prompt.DecodeJSON(reply, &specs); err != nil {
		g.log.Warn("Variant reply could not be decoded, using fallback variants", "parent", parent.ID, "error", err)
		return g.fallback(parent)
	}

	var out []*models.Candidate
	for i := 1; i <= VariantsPerParent; i++ {
		raw, ok := specs[fmt.Sprintf("variant%d", i)]
		if !ok {
			continue
		}
		var spec variantSpec
		if err := json.Unmarshal(raw, &spec); err != nil || strings.TrimSpace(spec.Prompt) == "" {
			continue
		}
		out = append(out, models.NewVariantCandidate(VariantID(parent, i), parent, spec.Approach, spec.Prompt))
	}
	metrics.VariantsTotal.WithLabelValues(metrics.SourceModel).Add(float64(len(out)))
	span.SetAttributes(attribute.Int("variants", len(out)))

	g.log.Info("Variants generated", "parent", parent.ID, "count", len(out))
	return out
}

func (g *VariantGenerator) fallback(parent *models.Candidate) []*models.Candidate {
	out := FallbackVariants(parent)
	metrics.VariantsTotal.WithLabelValues(metrics.SourceFallback).Add(float64(len(out)))
	return out
}
