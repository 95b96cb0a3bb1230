package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/longregen/dailybrief/internal/domain/models"
)

// RenderEvaluationReport formats one candidate's evaluation for the audit trail.
func RenderEvaluationReport(c *models.Candidate, e *models.Evaluation) string {
	var b strings.Builder
	b.WriteString("PROMPT EVALUATION REPORT\n")
	b.WriteString("========================\n")
	fmt.Fprintf(&b, "Generation: %d\n", c.Generation)
	fmt.Fprintf(&b, "Prompt ID: %s\n", c.ID)
	if c.ParentID != "" {
		fmt.Fprintf(&b, "Parent ID: %s\n", c.ParentID)
	}
	if c.Approach != "" {
		fmt.Fprintf(&b, "Approach: %s\n", c.Approach)
	}
	fmt.Fprintf(&b, "Timestamp: %s\n", e.EvaluatedAt.UTC().Format(time.RFC3339))
	if e.IsFallback() {
		fmt.Fprintf(&b, "Fallback: %s\n", e.Fallback)
	}

	section(&b, "SCORES")
	fmt.Fprintf(&b, "Factuality Score: %.1f/10\n", e.Scores.Factuality)
	fmt.Fprintf(&b, "Quantity Score: %.1f/10\n", e.Scores.Quantity)
	fmt.Fprintf(&b, "Genericity Score: %.1f/10\n", e.Scores.Genericity)
	fmt.Fprintf(&b, "Overall Score: %.1f/10\n", e.Scores.Overall)

	section(&b, "PROMPT")
	b.WriteString(c.Prompt + "\n")

	section(&b, "AI RESPONSE")
	b.WriteString(e.GeneratedResponse + "\n")

	section(&b, "EVALUATION FEEDBACK")
	b.WriteString(e.Feedback + "\n")

	section(&b, "IMPROVEMENT SUGGESTIONS")
	for i, s := range e.ImprovementSuggestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}

	b.WriteString("\nEND OF REPORT\n")
	return b.String()
}

// RenderSummary formats the final ranking of a run. logLocation tells the
// reader where the per-call audit records went.
func RenderSummary(r *models.OptimizationReport, logLocation string) string {
	var b strings.Builder
	b.WriteString("PROMPT OPTIMIZATION SUMMARY\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Date: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	if r.TargetDate != "" {
		fmt.Fprintf(&b, "Target Date: %s\n", r.TargetDate)
	}
	fmt.Fprintf(&b, "Total Evaluations: %d\n", r.EvaluationsRun)
	fmt.Fprintf(&b, "Stop Reason: %s\n", r.StopReason)

	section(&b, "FINAL RANKINGS")
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "%d. %s - Score: %.1f/10 (Factuality: %.1f, Quantity: %.1f, Genericity: %.1f)",
			e.Rank, e.ID, e.Overall, e.Factuality, e.Quantity, e.Genericity)
		if e.Fallback {
			b.WriteString(" [fallback]")
		}
		b.WriteString("\n")
	}

	section(&b, "BEST PERFORMING PROMPT")
	if r.BestPrompt == "" {
		b.WriteString("No evaluations completed\n")
	} else {
		b.WriteString(r.BestPrompt + "\n")
	}

	section(&b, "IMPROVEMENT OVER ORIGINAL")
	fmt.Fprintf(&b, "Original Score: %s/10\n", formatScore(r.SeedScore))
	if best := r.Best(); best != nil {
		fmt.Fprintf(&b, "Best Score: %.1f/10\n", best.Overall)
	} else {
		b.WriteString("Best Score: N/A/10\n")
	}
	fmt.Fprintf(&b, "Improvement: %s points\n", FormatImprovement(r.Improvement))

	section(&b, "LOG FILES GENERATED")
	b.WriteString("All prompts and model responses were recorded:\n")
	b.WriteString("- content-generation: prompts used to generate content and the model responses\n")
	b.WriteString("- evaluation: scoring prompts and the model responses\n")
	b.WriteString("- variant-generation: prompts used to create improved variants and the model responses\n")
	b.WriteString("- prompt-evaluation: detailed evaluation reports for each candidate\n")
	if logLocation != "" {
		fmt.Fprintf(&b, "\nRecords are saved in: %s\n", logLocation)
	}
	return b.String()
}

// FormatImprovement renders a score delta as "+1.5", "-0.3" or "N/A".
func FormatImprovement(delta *float64) string {
	if delta == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f", *delta)
}

func formatScore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *v)
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n" + title + ":\n")
	b.WriteString(strings.Repeat("-", len(title)+1) + "\n")
}
