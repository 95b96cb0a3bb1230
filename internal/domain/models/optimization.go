package models

import (
	"sort"
	"sync"
	"time"

	"github.com/longregen/dailybrief/internal/domain"
)

// Score bounds used by the scoring rubric.
const (
	MinScore     = 0.0
	MaxScore     = 10.0
	NeutralScore = 5.0
)

// SeedCandidateID is the id of the generation-0 candidate of every run.
const SeedCandidateID = "original"

// FallbackReason records why an evaluation carries the neutral default scores.
type FallbackReason string

const (
	FallbackNone             FallbackReason = ""
	FallbackGenerationFailed FallbackReason = "generation_failed"
	FallbackDecodeFailed     FallbackReason = "decode_failed"
)

// Scores holds the three rubric dimensions and their mean.
type Scores struct {
	Factuality float64 `json:"factualityScore"`
	Quantity   float64 `json:"quantityScore"`
	Genericity float64 `json:"genericityScore"`
	Overall    float64 `json:"overallScore"`
}

// NewScores clamps each dimension into [0,10] and derives Overall as their mean.
func NewScores(factuality, quantity, genericity float64) Scores {
	s := Scores{
		Factuality: clampScore(factuality),
		Quantity:   clampScore(quantity),
		Genericity: clampScore(genericity),
	}
	s.Overall = (s.Factuality + s.Quantity + s.Genericity) / 3
	return s
}

// NeutralScores is the fixed fallback score set.
func NeutralScores() Scores {
	return Scores{
		Factuality: NeutralScore,
		Quantity:   NeutralScore,
		Genericity: NeutralScore,
		Overall:    NeutralScore,
	}
}

func clampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Evaluation is the write-once scoring result of one candidate.
type Evaluation struct {
	GeneratedResponse      string         `json:"generated_response"`
	Scores                 Scores         `json:"scores"`
	Feedback               string         `json:"feedback"`
	ImprovementSuggestions []string       `json:"improvement_suggestions"`
	Fallback               FallbackReason `json:"fallback,omitempty"`
	EvaluatedAt            time.Time      `json:"evaluated_at"`
}

// IsFallback reports whether the neutral default was applied.
func (e *Evaluation) IsFallback() bool {
	return e != nil && e.Fallback != FallbackNone
}

// Candidate is one prompt under evaluation plus its lineage.
type Candidate struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Generation int    `json:"generation"`
	ParentID   string `json:"parent_id,omitempty"`
	Approach   string `json:"approach,omitempty"`

	mu         sync.RWMutex
	evaluation *Evaluation
}

// NewSeedCandidate creates the generation-0 candidate.
func NewSeedCandidate(prompt string) *Candidate {
	return &Candidate{
		ID:         SeedCandidateID,
		Prompt:     prompt,
		Generation: 0,
	}
}

// NewVariantCandidate creates an unevaluated child of parent.
func NewVariantCandidate(id string, parent *Candidate, approach, prompt string) *Candidate {
	return &Candidate{
		ID:         id,
		Prompt:     prompt,
		Generation: parent.Generation + 1,
		ParentID:   parent.ID,
		Approach:   approach,
	}
}

// Evaluation returns the attached evaluation or nil.
func (c *Candidate) Evaluation() *Evaluation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evaluation
}

// IsEvaluated reports whether an evaluation is attached.
func (c *Candidate) IsEvaluated() bool {
	return c.Evaluation() != nil
}

// Attach sets the evaluation. A second call fails with domain.ErrAlreadyEvaluated.
func (c *Candidate) Attach(e *Evaluation) error {
	if e == nil {
		return domain.NewDomainError(domain.ErrInvalidInput, "evaluation cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.evaluation != nil {
		return domain.NewDomainError(domain.ErrAlreadyEvaluated, c.ID)
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}
	c.evaluation = e
	return nil
}

// CandidatePool is the append-only candidate list of one run.
// It is owned by the optimizer driver and is not safe for concurrent appends.
type CandidatePool struct {
	candidates []*Candidate
	ids        map[string]struct{}
}

func NewCandidatePool() *CandidatePool {
	return &CandidatePool{ids: make(map[string]struct{})}
}

// Add appends c unless its id is taken. It returns false when rejected.
func (p *CandidatePool) Add(c *Candidate) bool {
	if c == nil {
		return false
	}
	if _, taken := p.ids[c.ID]; taken {
		return false
	}
	p.candidates = append(p.candidates, c)
	p.ids[c.ID] = struct{}{}
	return true
}

// HasID reports whether id is already used in this run.
func (p *CandidatePool) HasID(id string) bool {
	_, ok := p.ids[id]
	return ok
}

func (p *CandidatePool) Len() int {
	return len(p.candidates)
}

// All returns the candidates in insertion order.
func (p *CandidatePool) All() []*Candidate {
	out := make([]*Candidate, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// Get returns the candidate with the given id.
func (p *CandidatePool) Get(id string) *Candidate {
	for _, c := range p.candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Pending returns unevaluated candidates, oldest first.
func (p *CandidatePool) Pending() []*Candidate {
	var out []*Candidate
	for _, c := range p.candidates {
		if !c.IsEvaluated() {
			out = append(out, c)
		}
	}
	return out
}

// Ranked returns evaluated candidates sorted by overall score, highest first.
// Ties keep insertion order.
func (p *CandidatePool) Ranked() []*Candidate {
	var out []*Candidate
	for _, c := range p.candidates {
		if c.IsEvaluated() {
			out = append(out, c)
		}
	}
	RankCandidates(out)
	return out
}

// RankCandidates stable-sorts evaluated candidates by overall score descending.
func RankCandidates(cs []*Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return overall(cs[i]) > overall(cs[j])
	})
}

func overall(c *Candidate) float64 {
	if e := c.Evaluation(); e != nil {
		return e.Scores.Overall
	}
	return MinScore - 1
}

// OptimizationRun tracks one execution of the optimizer loop.
type OptimizationRun struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	MaxEvaluations int        `json:"max_evaluations"`
	Evaluations    int        `json:"evaluations"`
	Rounds         int        `json:"rounds"`
	StopReason     string     `json:"stop_reason,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// OptimizationRun status values
const (
	OptimizationStatusRunning   = "running"
	OptimizationStatusCompleted = "completed"
	OptimizationStatusFailed    = "failed"
)

// Stop reasons
const (
	StopBudgetExhausted = "budget_exhausted"
	StopNoEvaluated     = "no_evaluated_candidates"
	StopNoProgress      = "no_new_variants"
	StopCancelled       = "cancelled"
)

func NewOptimizationRun(id string, maxEvaluations int) *OptimizationRun {
	return &OptimizationRun{
		ID:             id,
		Status:         OptimizationStatusRunning,
		MaxEvaluations: maxEvaluations,
		StartedAt:      time.Now().UTC(),
	}
}

func (r *OptimizationRun) MarkCompleted(reason string) {
	now := time.Now().UTC()
	r.Status = OptimizationStatusCompleted
	r.StopReason = reason
	r.CompletedAt = &now
}

func (r *OptimizationRun) MarkFailed(reason string) {
	now := time.Now().UTC()
	r.Status = OptimizationStatusFailed
	r.StopReason = reason
	r.CompletedAt = &now
}
