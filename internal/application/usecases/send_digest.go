package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/tracing"
	"github.com/longregen/dailybrief/internal/application/services"
	"github.com/longregen/dailybrief/internal/digest"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
	"github.com/longregen/dailybrief/internal/prompt"
)

// Digest job names, used for metrics, spans and audit candidate ids
const (
	JobEvents = "events"
	JobGames  = "games"
	JobTV     = "tv"
	JobShift  = "shift"
)

// DigestRecipients holds the destination of each digest.
type DigestRecipients struct {
	Events string
	Games  string
	TV     string
	Phone  string
}

// DigestConfig configures the digest jobs.
type DigestConfig struct {
	From       string
	Recipients DigestRecipients
	Area       digest.Area
	Shift      digest.Shift
	Location   *time.Location

	// TVPrompt replaces the built-in first step of the TV guide, e.g. with
	// the best prompt of an optimizer run.
	TVPrompt string

	// Payloads, when set, receives each decoded payload as indented JSON.
	Payloads io.Writer
}

// SendDigest generates, renders and delivers the daily digests.
type SendDigest struct {
	generator ports.Generator
	mailer    ports.Mailer
	texter    ports.Texter
	sink      ports.AuditSink
	ids       ports.IDGenerator
	log       *logger.Logger
	config    DigestConfig
	now       func() time.Time
}

// NewSendDigest creates the digest usecase. mailer and texter may be nil
// for jobs that do not need them.
func NewSendDigest(
	generator ports.Generator,
	mailer ports.Mailer,
	texter ports.Texter,
	sink ports.AuditSink,
	ids ports.IDGenerator,
	log *logger.Logger,
	config DigestConfig,
) *SendDigest {
	if log == nil {
		log = logger.NewNop()
	}
	return &SendDigest{
		generator: generator,
		mailer:    mailer,
		texter:    texter,
		sink:      sink,
		ids:       ids,
		log:       log,
		config:    config,
		now:       time.Now,
	}
}

func (uc *SendDigest) dates() digest.Dates {
	return digest.NewDates(uc.now(), uc.config.Location)
}

// SendEvents delivers the local events newsletter. An empty first reply is
// retried once with the fallback prompt.
func (uc *SendDigest) SendEvents(ctx context.Context) (*digest.Rendered, error) {
	var out *digest.Rendered
	err := uc.run(ctx, JobEvents, func(ctx context.Context, log *logger.Logger) error {
		d := uc.dates()
		area := uc.config.Area

		var payload digest.EventsDigest
		if err := uc.ask(ctx, JobEvents, ports.AuditDigestGeneration, digest.EventsPrompt(area, d), &payload); err != nil {
			return err
		}
		if !payload.HasEvents() {
			log.Warn("No events returned, retrying with fallback prompt")
			var second digest.EventsDigest
			if err := uc.ask(ctx, JobEvents, ports.AuditDigestGeneration, digest.EventsFallbackPrompt(area, d), &second); err != nil {
				if !errors.Is(err, errDecode) {
					return err
				}
				log.Warn("Fallback reply unusable, keeping first reply", "error", err)
			} else {
				payload = second
			}
		}
		uc.dump(&payload)

		rendered, err := digest.RenderEvents(&payload, area, d)
		if err != nil {
			return err
		}
		out = rendered
		log.Info("Events digest rendered", "sections", len(payload.Sections()))
		return uc.mail(ctx, uc.config.Recipients.Events, rendered)
	})
	return out, err
}

// SendGames delivers the games newsletter.
func (uc *SendDigest) SendGames(ctx context.Context) (*digest.Rendered, error) {
	var out *digest.Rendered
	err := uc.run(ctx, JobGames, func(ctx context.Context, log *logger.Logger) error {
		var payload digest.GamesDigest
		if err := uc.ask(ctx, JobGames, ports.AuditDigestGeneration, digest.GamesPrompt(), &payload); err != nil {
			return err
		}
		if len(payload.Games) == 0 {
			return domain.NewDomainError(domain.ErrEmptyPayload, "games digest")
		}
		if len(payload.Games) < digest.MinGames {
			log.Warn("Fewer games than requested", "games", len(payload.Games), "wanted", digest.MinGames)
		}
		uc.dump(&payload)

		rendered, err := digest.RenderGames(&payload, uc.dates())
		if err != nil {
			return err
		}
		out = rendered
		return uc.mail(ctx, uc.config.Recipients.Games, rendered)
	})
	return out, err
}

// SendTV delivers the TV guide: a suggestion step followed by a strict
// fact-check of its output.
func (uc *SendDigest) SendTV(ctx context.Context) (*digest.Rendered, error) {
	var out *digest.Rendered
	err := uc.run(ctx, JobTV, func(ctx context.Context, log *logger.Logger) error {
		d := uc.dates()
		suggest := uc.config.TVPrompt
		if strings.TrimSpace(suggest) == "" {
			suggest = digest.TVGuidePrompt(d)
		}

		var initial digest.TVGuide
		if err := uc.ask(ctx, JobTV, ports.AuditDigestGeneration, suggest, &initial); err != nil {
			return err
		}
		log.Info("Suggestions generated", "items", initial.Items())

		initialJSON, err := json.MarshalIndent(&initial, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal suggestions: %w", err)
		}

		var checked digest.TVGuide
		if err := uc.ask(ctx, JobTV, ports.AuditDigestFactCheck, digest.TVFactCheckPrompt(d, string(initialJSON)), &checked); err != nil {
			return err
		}
		log.Info("Suggestions fact-checked", "kept", checked.Items(), "dropped", initial.Items()-checked.Items())
		uc.dump(&checked)

		rendered, err := digest.RenderTV(&checked, d)
		if err != nil {
			return err
		}
		out = rendered
		return uc.mail(ctx, uc.config.Recipients.TV, rendered)
	})
	return out, err
}

// SendShift texts the motivational message and returns it.
func (uc *SendDigest) SendShift(ctx context.Context) (string, error) {
	var text string
	err := uc.run(ctx, JobShift, func(ctx context.Context, log *logger.Logger) error {
		if uc.texter == nil {
			return domain.NewDomainError(domain.ErrNotConfigured, "sms transport")
		}
		hours := uc.config.Shift.RemainingHours(uc.dates().Time())
		log.Info("Shift hours computed", "remaining", hours)

		var msg digest.ShiftMessage
		if err := uc.ask(ctx, JobShift, ports.AuditDigestGeneration, digest.ShiftPrompt(uc.config.Shift, hours), &msg); err != nil {
			return err
		}
		text = msg.Text()
		if text == "" {
			return domain.NewDomainError(domain.ErrEmptyPayload, "shift message")
		}
		uc.dump(&msg)
		return uc.texter.SendSMS(ctx, uc.config.Recipients.Phone, text)
	})
	return text, err
}

// run wraps one job with its run id, span, metrics and logs.
func (uc *SendDigest) run(ctx context.Context, job string, fn func(context.Context, *logger.Logger) error) error {
	runID := ""
	if uc.ids != nil {
		runID = uc.ids.GenerateRunID()
	}
	ctx = ports.WithRunID(ctx, runID)
	ctx, span := tracing.Start(ctx, "digest."+job, attribute.String("run.id", runID))

	log := uc.log.With("job", job, "run", runID)
	start := time.Now()
	log.Info("Digest started")

	err := fn(ctx, log)
	tracing.End(span, err)
	if err != nil {
		metrics.DigestRunsTotal.WithLabelValues(job, metrics.StatusError).Inc()
		log.Error("Digest failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("%s digest: %w", job, err)
	}
	metrics.DigestRunsTotal.WithLabelValues(job, metrics.StatusSuccess).Inc()
	log.Info("Digest completed", "duration", time.Since(start))
	return nil
}

var errDecode = errors.New("reply is not valid JSON")

// ask sends request, records the exchange and decodes the reply into v.
func (uc *SendDigest) ask(ctx context.Context, job, category, request string, v any) error {
	reply, err := uc.generator.Generate(ctx, request)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	services.RecordAudit(ctx, uc.sink, uc.log, ports.AuditRecord{
		Category:    category,
		CandidateID: job,
		Payload:     services.Exchange(request, reply),
	})
	if err := prompt.DecodeJSON(reply, v); err != nil {
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	return nil
}

func (uc *SendDigest) mail(ctx context.Context, to string, r *digest.Rendered) error {
	if uc.mailer == nil {
		return domain.NewDomainError(domain.ErrNotConfigured, "mail transport")
	}
	return uc.mailer.Send(ctx, ports.Email{
		From:    uc.config.From,
		To:      to,
		Subject: r.Subject,
		Text:    r.Text,
		HTML:    r.HTML,
	})
}

func (uc *SendDigest) dump(v any) {
	if uc.config.Payloads == nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		uc.log.Warn("Payload dump failed", "error", err)
		return
	}
	fmt.Fprintf(uc.config.Payloads, "%s\n", data)
}
