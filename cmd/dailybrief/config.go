package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCmd shows the effective configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("LLM:")
			fmt.Printf("  URL:          %s\n", cfg.LLM.URL)
			fmt.Printf("  Model:        %s\n", cfg.LLM.Model)
			fmt.Printf("  API key:      %s\n", maskSecret(cfg.LLM.APIKey))
			fmt.Printf("  Temperature:  %.1f\n", cfg.LLM.Temperature)
			fmt.Printf("  Max tokens:   %d\n", cfg.LLM.MaxOutputTokens)
			fmt.Printf("  Timeout:      %s\n", cfg.LLM.Timeout)
			fmt.Printf("  Requests/min: %d\n", cfg.LLM.RequestsPerMinute)

			fmt.Println("\nEmail:")
			fmt.Printf("  Provider:     %s\n", cfg.Email.Provider)
			fmt.Printf("  From:         %s\n", orNotSet(cfg.Email.From))
			if cfg.Email.Provider == "sendgrid" {
				fmt.Printf("  SendGrid URL: %s\n", cfg.Email.SendGridURL)
				fmt.Printf("  SendGrid key: %s\n", maskSecret(cfg.Email.SendGridAPIKey))
			} else {
				fmt.Printf("  SMTP:         %s:%d\n", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
				fmt.Printf("  Username:     %s\n", orNotSet(cfg.Email.SMTPUsername))
				fmt.Printf("  Password:     %s\n", maskSecret(cfg.Email.SMTPPassword))
			}

			fmt.Println("\nSMS:")
			fmt.Printf("  Twilio SID:   %s\n", maskSecret(cfg.SMS.TwilioAccountSID))
			fmt.Printf("  Twilio token: %s\n", maskSecret(cfg.SMS.TwilioAuthToken))
			fmt.Printf("  From:         %s\n", orNotSet(cfg.SMS.TwilioFrom))

			fmt.Println("\nRecipients:")
			fmt.Printf("  Events:       %s\n", orNotSet(cfg.Recipients.Events))
			fmt.Printf("  Games:        %s\n", orNotSet(cfg.Recipients.Games))
			fmt.Printf("  TV:           %s\n", orNotSet(cfg.Recipients.TV))
			fmt.Printf("  Phone:        %s\n", orNotSet(cfg.Recipients.Phone))

			fmt.Println("\nDigests:")
			fmt.Printf("  Location:     %s\n", cfg.Location)
			fmt.Printf("  Area:         %s, %s (%s, %d mi)\n", cfg.Area.Town, cfg.Area.County, cfg.Area.Postcode, cfg.Area.RadiusMiles)
			fmt.Printf("  Shift:        %s, %02d:00-%02d:00\n", cfg.Shift.Role, cfg.Shift.Start, cfg.Shift.End)

			fmt.Println("\nOptimizer:")
			fmt.Printf("  Evaluations:  %d\n", cfg.Optimizer.MaxEvaluations)
			fmt.Printf("  Batch size:   %d\n", cfg.Optimizer.BatchSize)
			fmt.Printf("  Seed file:    %s\n", orNotSet(cfg.Optimizer.SeedFile))

			fmt.Println("\nAudit:")
			fmt.Printf("  Directory:    %s\n", cfg.Audit.Dir)
			fmt.Printf("  Redis:        %s\n", maskSecret(cfg.Audit.RedisURL))
			fmt.Printf("  PostgreSQL:   %s\n", maskSecret(cfg.Audit.PostgresURL))
			fmt.Printf("  Metrics file: %s\n", orNotSet(cfg.Metrics.TextfilePath))
			fmt.Printf("  Tracing:      %t\n", cfg.Tracing.Enabled)

			fmt.Println("\nEnvironment variables:")
			fmt.Println("  DAILYBRIEF_CONFIG, DAILYBRIEF_LLM_API_KEY (or GEMINI_API_KEY), DAILYBRIEF_LLM_MODEL")
			fmt.Println("  DAILYBRIEF_EMAIL_PROVIDER, DAILYBRIEF_EMAIL_FROM, DAILYBRIEF_SMTP_USERNAME, DAILYBRIEF_SMTP_PASSWORD")
			fmt.Println("  DAILYBRIEF_SENDGRID_API_KEY, DAILYBRIEF_TWILIO_ACCOUNT_SID, DAILYBRIEF_TWILIO_AUTH_TOKEN, DAILYBRIEF_TWILIO_FROM")
			fmt.Println("  DAILYBRIEF_EVENTS_RECIPIENT, DAILYBRIEF_GAMES_RECIPIENT, DAILYBRIEF_TV_RECIPIENT, DAILYBRIEF_PHONE")
			fmt.Println("  DAILYBRIEF_AUDIT_DIR, DAILYBRIEF_REDIS_URL, DAILYBRIEF_POSTGRES_URL, DAILYBRIEF_METRICS_TEXTFILE")
			fmt.Println("  DAILYBRIEF_LOG_MODE, DAILYBRIEF_LOG_LEVEL, DAILYBRIEF_TRACING_ENABLED, DAILYBRIEF_LOCATION")
		},
	}
}
