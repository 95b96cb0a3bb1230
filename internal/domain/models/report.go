package models

import "time"

// RankedEntry is one row of the final ranking.
type RankedEntry struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Generation int     `json:"generation"`
	Factuality float64 `json:"factuality"`
	Quantity   float64 `json:"quantity"`
	Genericity float64 `json:"genericity"`
	Overall    float64 `json:"overall"`
	Fallback   bool    `json:"fallback,omitempty"`
}

// OptimizationReport summarizes a finished run.
type OptimizationReport struct {
	RunID           string        `json:"run_id"`
	TargetDate      string        `json:"target_date,omitempty"`
	EvaluationsRun  int           `json:"evaluations_run"`
	StopReason      string        `json:"stop_reason"`
	Entries         []RankedEntry `json:"entries"`
	BestPrompt      string        `json:"best_prompt"`
	SeedScore       *float64      `json:"seed_score,omitempty"`
	BestScore       float64       `json:"best_score"`
	Improvement     *float64      `json:"improvement,omitempty"`
	SummaryLocation string        `json:"summary_location,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// NewOptimizationReport builds the report from candidates already ranked best-first.
func NewOptimizationReport(runID string, evaluations int, stopReason string, ranked []*Candidate) *OptimizationReport {
	r := &OptimizationReport{
		RunID:          runID,
		EvaluationsRun: evaluations,
		StopReason:     stopReason,
		Entries:        make([]RankedEntry, 0, len(ranked)),
		GeneratedAt:    time.Now().UTC(),
	}

	for i, c := range ranked {
		e := c.Evaluation()
		if e == nil {
			continue
		}
		r.Entries = append(r.Entries, RankedEntry{
			Rank:       i + 1,
			ID:         c.ID,
			Generation: c.Generation,
			Factuality: e.Scores.Factuality,
			Quantity:   e.Scores.Quantity,
			Genericity: e.Scores.Genericity,
			Overall:    e.Scores.Overall,
			Fallback:   e.IsFallback(),
		})
		if c.ID == SeedCandidateID {
			seed := e.Scores.Overall
			r.SeedScore = &seed
		}
	}

	if len(ranked) > 0 && len(r.Entries) > 0 {
		r.BestPrompt = ranked[0].Prompt
		r.BestScore = r.Entries[0].Overall
		if r.SeedScore != nil {
			delta := r.BestScore - *r.SeedScore
			r.Improvement = &delta
		}
	}

	return r
}

// Best returns the top entry, or nil for an empty report.
func (r *OptimizationReport) Best() *RankedEntry {
	if len(r.Entries) == 0 {
		return nil
	}
	return &r.Entries[0]
}
