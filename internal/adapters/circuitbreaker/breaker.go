package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker trips after maxFailures consecutive failures and rejects calls
// until cooldown has passed. It then lets probeSuccesses calls through before
// closing again. Caller cancellation does not count as a failure.
type Breaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
	onChange  func(from, to State)

	maxFailures    int
	cooldown       time.Duration
	probeSuccesses int
}

type Option func(*Breaker)

// WithStateListener registers a callback invoked on every transition.
func WithStateListener(fn func(from, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// WithProbeSuccesses sets how many half-open successes close the breaker.
func WithProbeSuccesses(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.probeSuccesses = n
		}
	}
}

func New(maxFailures int, cooldown time.Duration, opts ...Option) *Breaker {
	b := &Breaker{
		state:          StateClosed,
		now:            time.Now,
		maxFailures:    maxFailures,
		cooldown:       cooldown,
		probeSuccesses: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case err == nil:
		b.recordSuccess()
	case errors.Is(err, context.Canceled):
		// the caller gave up; says nothing about the backend
	default:
		b.recordFailure()
	}
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return ErrCircuitOpen
	}
	b.transition(StateHalfOpen)
	b.successes = 0
	return nil
}

func (b *Breaker) recordSuccess() {
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.probeSuccesses {
			b.failures = 0
			b.transition(StateClosed)
		}
		return
	}
	b.failures = 0
}

func (b *Breaker) recordFailure() {
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
