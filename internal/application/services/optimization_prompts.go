package services

import (
	"fmt"
	"strings"

	"github.com/longregen/dailybrief/internal/domain/models"
)

// QuantityTarget is the expected item range for one section of the generated payload.
type QuantityTarget struct {
	Section string
	Min     int
	Max     int
}

func (q QuantityTarget) Target() int {
	return (q.Min + q.Max) / 2
}

// Rubric describes what the scorer judges. The prompts built from it ask for
// the fixed JSON schema that the evaluator decodes.
type Rubric struct {
	Subject string
	Targets []QuantityTarget
}

// TVGuideRubric scores UK TV & entertainment guides.
func TVGuideRubric() Rubric {
	return Rubric{
		Subject: "TV & Entertainment",
		Targets: []QuantityTarget{
			{Section: "sports", Min: 4, Max: 8},
			{Section: "liveTV", Min: 8, Max: 12},
			{Section: "tvShows", Min: 12, Max: 20},
			{Section: "movies", Min: 12, Max: 20},
			{Section: "cinema", Min: 6, Max: 10},
		},
	}
}

// ScoringPrompt asks the model to grade response, produced by originalPrompt,
// on factuality, quantity and genericity.
func (r Rubric) ScoringPrompt(originalPrompt, response string) string {
	var quantity, analysis strings.Builder
	for i, t := range r.Targets {
		fmt.Fprintf(&quantity, "- **%s**: should have %d-%d items (target: %d)\n", t.Section, t.Min, t.Max, t.Target())
		sep := ","
		if i == len(r.Targets)-1 {
			sep = ""
		}
		fmt.Fprintf(&analysis, "      %q: {\"count\": [actual_count], \"target\": \"%d-%d\", \"score\": [0_to_10]}%s\n", t.Section, t.Min, t.Max, sep)
	}

	return fmt.Sprintf(`You are an expert %[1]s content evaluator. Grade the AI-generated output below for FACTUALITY, QUANTITY and GENERICITY.

**ORIGINAL PROMPT:**
%[2]s

**AI RESPONSE TO EVALUATE:**
%[3]s

**EVALUATION CRITERIA:**

**FACTUALITY SCORE (0-10):**
- Real content (40%%): do the shows, films and events exist and are they described accurately?
- Platform accuracy (25%%): is each item matched to a platform that actually carries it?
- Time accuracy (20%%): are broadcast times realistic for UK scheduling?
- Channel accuracy (15%%): do channels fit the content and their usual programming?

**QUANTITY SCORE (0-10):**
%[4]s
**GENERICITY SCORE (0-10):**
- Flexibility (40%%): does the prompt leave the model room to choose content instead of dictating titles?
- Generic guidelines (30%%): does it prefer categories ("latest Marvel release", "popular crime drama") over named titles?
- Creative freedom (20%%): does it encourage plausible content rather than strict recall?
- Adaptability (10%%): would it work on any date without depending on specific real-world events?
- A higher score means a more generic, flexible prompt.

**OVERALL SCORE:** the average of the factuality, quantity and genericity scores.

**OUTPUT FORMAT:**
Return a JSON object with exactly this structure and nothing before or after it:

{
  "scores": {
    "factualityScore": [numeric_value_0_to_10],
    "quantityScore": [numeric_value_0_to_10],
    "genericityScore": [numeric_value_0_to_10],
    "overallScore": [average_of_the_three]
  },
  "analysis": {
    "factualityIssues": ["specific factuality problem"],
    "quantityAnalysis": {
%[5]s    },
    "genericityAnalysis": {
      "flexibilityLevel": "High/Medium/Low",
      "genericPatterns": ["generic language used"],
      "specificRequirements": ["overly specific requirement"],
      "creativeFreedom": "short assessment"
    },
    "strengths": ["what the prompt does well"],
    "weaknesses": ["what needs improvement"]
  },
  "improvedPromptSuggestions": [
    {"focus": "factuality", "description": "[one-line improvement]", "specificChanges": ["[change]"]},
    {"focus": "quantity", "description": "[one-line improvement]", "specificChanges": ["[change]"]},
    {"focus": "genericity", "description": "[one-line improvement]", "specificChanges": ["[change]"]}
  ]
}

Return ONLY the JSON object. No markdown, no commentary. Be specific and make every suggestion directly actionable in a rewritten prompt.`,
		r.Subject, originalPrompt, response, quantity.String(), analysis.String())
}

// VariantPrompt asks for three rewrites of parent, one per scoring axis.
func (r Rubric) VariantPrompt(parentPrompt string, eval *models.Evaluation) string {
	suggestions := "- " + strings.Join(eval.ImprovementSuggestions, "\n- ")

	return fmt.Sprintf(`You are a prompt engineering expert. Write 3 improved variants of a %[1]s generation prompt using the evaluation below.

**ORIGINAL PROMPT:**
%[2]s

**EVALUATION SCORES:**
- Overall: %.1[3]f/10
- Factuality: %.1[4]f/10
- Quantity: %.1[5]f/10
- Genericity: %.1[6]f/10

**DETAILED ANALYSIS:**
%[7]s

**IMPROVEMENT SUGGESTIONS:**
%[8]s

**YOUR TASK:**
Each variant must fix the issues above, keep the same JSON output structure, and take a clearly different approach from the other two:
- variant1: sharper specificity and real content examples (factuality first, genericity may drop)
- variant2: stricter quantity targets and clearer guidelines
- variant3: more genericity and creative freedom while keeping quality

**OUTPUT FORMAT:**
Return a JSON object with exactly this structure and nothing before or after it:

{
  "variant1": {"approach": "Enhanced specificity and real content examples (factuality focus)", "prompt": "[complete improved prompt]"},
  "variant2": {"approach": "Improved quantity targets and clearer guidelines", "prompt": "[complete improved prompt]"},
  "variant3": {"approach": "Better genericity and flexibility (creative freedom focus)", "prompt": "[complete improved prompt]"}
}

Return ONLY the JSON object. Each prompt must be complete and usable on its own.`,
		r.Subject, parentPrompt,
		eval.Scores.Overall, eval.Scores.Factuality, eval.Scores.Quantity, eval.Scores.Genericity,
		eval.Feedback, suggestions)
}
