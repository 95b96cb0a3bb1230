package main

import (
	"context"
	"fmt"
	"os"

	"github.com/longregen/dailybrief/internal/adapters/audit"
	"github.com/longregen/dailybrief/internal/adapters/notify"
	"github.com/longregen/dailybrief/internal/config"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Shared global variables
var (
	cfg             *config.Config
	appLog          *logger.Logger
	generator       ports.Generator
	shutdownTracing func(context.Context) error
	finished        bool
)

// openAuditSink builds a fan-out over every configured sink. The file sink is
// always present. Unreachable Redis or Postgres sinks are skipped with a warning.
func openAuditSink(ctx context.Context, ids ports.IDGenerator) (*audit.Multi, string) {
	sinks := []audit.NamedSink{audit.NewFileSink(cfg.Audit.Dir, cfg.Audit.OpenCommand, appLog)}
	location := cfg.Audit.Dir

	if cfg.Audit.RedisURL != "" {
		s, err := audit.NewRedisSink(ctx, cfg.Audit.RedisURL, cfg.Audit.RedisKey, ids)
		if err != nil {
			appLog.Warn("Redis audit sink disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			location += ", redis list " + cfg.Audit.RedisKey
		}
	}
	if cfg.Audit.PostgresURL != "" {
		s, err := audit.NewPostgresSink(ctx, cfg.Audit.PostgresURL, ids)
		if err != nil {
			appLog.Warn("Postgres audit sink disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			location += ", postgres audit_records"
		}
	}
	return audit.NewMulti(sinks...), location
}

// newMailer returns the configured mail transport, or the console one for dry runs.
func newMailer(dryRun bool, recipient string) (ports.Mailer, error) {
	if dryRun {
		return notify.NewConsoleMailer(os.Stdout, true), nil
	}
	if err := cfg.RequireEmail(recipient); err != nil {
		return nil, err
	}
	switch cfg.Email.Provider {
	case "sendgrid":
		return notify.NewSendGridMailer(cfg.Email.SendGridURL, cfg.Email.SendGridAPIKey, cfg.Email.From, appLog)
	default:
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
		}, appLog)
	}
}

// newTexter returns Twilio, or the console texter for dry runs.
func newTexter(dryRun bool) (ports.Texter, error) {
	if dryRun {
		return notify.NewConsoleTexter(os.Stdout), nil
	}
	if err := cfg.RequireSMS(); err != nil {
		return nil, err
	}
	return notify.NewTwilioTexter(cfg.SMS.TwilioURL, cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioFrom, appLog)
}

// readPromptFile loads a prompt from disk, rejecting empty files.
func readPromptFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return string(data), nil
}

// maskSecret masks a secret string for display
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
