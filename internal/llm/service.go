package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/longregen/dailybrief/internal/adapters/circuitbreaker"
	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/tracing"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/logger"
)

const (
	// DefaultTimeout is the maximum time to wait for one generation, retries included
	DefaultTimeout = 5 * time.Minute
)

// completer is the part of Client the service depends on
type completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Service implements ports.Generator on top of the Gemini client
type Service struct {
	client  completer
	breaker *circuitbreaker.Breaker
	timeout time.Duration
	log     *logger.Logger
}

// NewService creates a new LLM service
func NewService(client completer, timeout time.Duration, log *logger.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		client: client,
		breaker: circuitbreaker.New(5, 30*time.Second,
			circuitbreaker.WithStateListener(func(from, to circuitbreaker.State) {
				metrics.LLMBreakerState.Set(float64(to))
				log.Warn("LLM circuit breaker changed state", "from", from.String(), "to", to.String())
			}),
		),
		timeout: timeout,
		log:     log.With("component", "llm", "model", client.Model()),
	}
}

// Generate sends prompt to the model and returns the completion text.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", domain.NewDomainError(domain.ErrEmptyContent, "prompt")
	}

	ctx, span := tracing.Start(ctx, "llm.generate",
		attribute.String("llm.model", s.client.Model()),
		attribute.Int("llm.prompt_chars", len(prompt)),
	)

	start := time.Now()
	var text string
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		text, err = s.doGenerate(ctx, prompt)
		return err
	})
	elapsed := time.Since(start)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	metrics.LLMRequestsTotal.WithLabelValues(s.client.Model(), status).Inc()
	metrics.LLMRequestDuration.WithLabelValues(s.client.Model()).Observe(elapsed.Seconds())

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			err = domain.NewDomainError(domain.ErrLLMUnavailable, err.Error())
		}
		err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		s.log.Warn("generation failed", "error", err, "elapsed", elapsed)
		tracing.End(span, err)
		return "", err
	}

	span.SetAttributes(attribute.Int("llm.response_chars", len(text)))
	tracing.End(span, nil)
	s.log.Debug("generation completed", "elapsed", elapsed, "response_chars", len(text))
	return text, nil
}

func (s *Service) doGenerate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.Generate(ctx, prompt)
}
