package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/longregen/dailybrief/internal/domain"
)

// isolate clears every variable Load reads so host settings cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key := strings.SplitN(kv, "=", 2)[0]
		if strings.HasPrefix(key, "DAILYBRIEF_") || strings.HasPrefix(key, "TWILIO_") {
			t.Setenv(key, "")
		}
	}
	for _, key := range []string{
		"FINAL_GEMINI_API_KEY", "GEMINI_API_KEY", "SENDER_EMAIL", "SENDER_PASSWORD",
		"RECIPIENT_EMAIL", "PERSONAL_NEWSLETTER", "TV_NEWSLETTER", "MY_PHONE_NUMBER",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("expected gemini-2.5-pro, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.MaxOutputTokens <= 0 {
		t.Error("LLM MaxOutputTokens should be positive")
	}
	if cfg.Optimizer.MaxEvaluations != 12 {
		t.Errorf("expected 12 max evaluations, got %d", cfg.Optimizer.MaxEvaluations)
	}
	if cfg.Optimizer.BatchSize != 5 {
		t.Errorf("expected batch size 5, got %d", cfg.Optimizer.BatchSize)
	}
	if cfg.Email.SMTPPort != 465 {
		t.Errorf("expected SMTP port 465, got %d", cfg.Email.SMTPPort)
	}
	if cfg.Location != "Europe/London" {
		t.Errorf("expected Europe/London, got %s", cfg.Location)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEnvString(t *testing.T) {
	target := "original"

	t.Run("sets value when env var exists", func(t *testing.T) {
		t.Setenv("TEST_VAR", "new_value")
		envString("TEST_VAR", &target)
		if target != "new_value" {
			t.Errorf("expected 'new_value', got '%s'", target)
		}
	})

	t.Run("does not change value when env var is empty", func(t *testing.T) {
		t.Setenv("TEST_VAR", "")
		target = "original"
		envString("TEST_VAR", &target)
		if target != "original" {
			t.Errorf("expected 'original', got '%s'", target)
		}
	})
}

func TestEnvFirst(t *testing.T) {
	t.Run("prefers earlier keys", func(t *testing.T) {
		t.Setenv("TEST_NEW", "new")
		t.Setenv("TEST_LEGACY", "legacy")
		target := ""
		envFirst(&target, "TEST_NEW", "TEST_LEGACY")
		if target != "new" {
			t.Errorf("expected 'new', got '%s'", target)
		}
	})

	t.Run("falls back to legacy key", func(t *testing.T) {
		t.Setenv("TEST_NEW", "")
		t.Setenv("TEST_LEGACY", "legacy")
		target := ""
		envFirst(&target, "TEST_NEW", "TEST_LEGACY")
		if target != "legacy" {
			t.Errorf("expected 'legacy', got '%s'", target)
		}
	})
}

func TestEnvInt(t *testing.T) {
	target := 42

	t.Run("sets value when env var is valid int", func(t *testing.T) {
		t.Setenv("TEST_INT", "100")
		envInt("TEST_INT", &target)
		if target != 100 {
			t.Errorf("expected 100, got %d", target)
		}
	})

	t.Run("does not change value when env var is invalid", func(t *testing.T) {
		t.Setenv("TEST_INT", "not_a_number")
		target = 42
		envInt("TEST_INT", &target)
		if target != 42 {
			t.Errorf("expected 42, got %d", target)
		}
	})
}

func TestEnvDurationAndBool(t *testing.T) {
	d := time.Second
	t.Setenv("TEST_DURATION", "90s")
	envDuration("TEST_DURATION", &d)
	if d != 90*time.Second {
		t.Errorf("expected 90s, got %s", d)
	}

	t.Setenv("TEST_DURATION", "soon")
	envDuration("TEST_DURATION", &d)
	if d != 90*time.Second {
		t.Errorf("invalid duration should be ignored, got %s", d)
	}

	b := false
	t.Setenv("TEST_BOOL", "true")
	envBool("TEST_BOOL", &b)
	if !b {
		t.Error("expected true")
	}
}

func TestLoad_LegacyVariables(t *testing.T) {
	isolate(t)
	t.Setenv("FINAL_GEMINI_API_KEY", "legacy-key")
	t.Setenv("SENDER_EMAIL", "me@example.com")
	t.Setenv("SENDER_PASSWORD", "app-password")
	t.Setenv("PERSONAL_NEWSLETTER", "events@example.com")
	t.Setenv("RECIPIENT_EMAIL", "games@example.com")
	t.Setenv("TV_NEWSLETTER", "tv@example.com")
	t.Setenv("MY_PHONE_NUMBER", "+447700900000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string][2]string{
		"api key":   {cfg.LLM.APIKey, "legacy-key"},
		"from":      {cfg.Email.From, "me@example.com"},
		"smtp user": {cfg.Email.SMTPUsername, "me@example.com"},
		"smtp pass": {cfg.Email.SMTPPassword, "app-password"},
		"events":    {cfg.Recipients.Events, "events@example.com"},
		"games":     {cfg.Recipients.Games, "games@example.com"},
		"tv":        {cfg.Recipients.TV, "tv@example.com"},
		"phone":     {cfg.Recipients.Phone, "+447700900000"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s: expected %q, got %q", name, c[1], c[0])
		}
	}
}

func TestLoad_NewVariablesOverrideLegacy(t *testing.T) {
	isolate(t)
	t.Setenv("FINAL_GEMINI_API_KEY", "legacy-key")
	t.Setenv("DAILYBRIEF_LLM_API_KEY", "new-key")
	t.Setenv("DAILYBRIEF_MAX_EVALUATIONS", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "new-key" {
		t.Errorf("expected new-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Optimizer.MaxEvaluations != 4 {
		t.Errorf("expected 4, got %d", cfg.Optimizer.MaxEvaluations)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: gemini-2.5-flash
  timeout: 90s
optimizer:
  max_evaluations: 20
  batch_size: 3
email:
  provider: sendgrid
  sendgrid_api_key: sg-key
shift:
  pet_name: Biscuit
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAILYBRIEF_BATCH_SIZE", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("expected gemini-2.5-flash, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.LLM.Timeout)
	}
	if cfg.Optimizer.MaxEvaluations != 20 {
		t.Errorf("expected 20, got %d", cfg.Optimizer.MaxEvaluations)
	}
	if cfg.Optimizer.BatchSize != 2 {
		t.Errorf("env should override file, got batch size %d", cfg.Optimizer.BatchSize)
	}
	if cfg.Email.Provider != "sendgrid" || cfg.Email.SendGridAPIKey != "sg-key" {
		t.Errorf("unexpected email config: %+v", cfg.Email)
	}
	if cfg.Shift.PetName != "Biscuit" {
		t.Errorf("expected Biscuit, got %s", cfg.Shift.PetName)
	}
	// untouched sections keep defaults
	if cfg.Email.SMTPPort != 465 {
		t.Errorf("expected default SMTP port, got %d", cfg.Email.SMTPPort)
	}
}

func TestLoad_JSONFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"optimizer": {"max_evaluations": 7}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Optimizer.MaxEvaluations != 7 {
		t.Errorf("expected 7, got %d", cfg.Optimizer.MaxEvaluations)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for explicitly named missing file")
	}

	t.Setenv("DAILYBRIEF_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(""); err == nil {
		t.Error("expected error for missing DAILYBRIEF_CONFIG file")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("optimizer: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad llm url", func(c *Config) { c.LLM.URL = "not a url" }, "LLM URL must be a valid URL"},
		{"empty llm url", func(c *Config) { c.LLM.URL = "" }, "LLM URL is required"},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }, "temperature"},
		{"tokens", func(c *Config) { c.LLM.MaxOutputTokens = 0 }, "max_output_tokens"},
		{"timeout", func(c *Config) { c.LLM.Timeout = 0 }, "timeout"},
		{"provider", func(c *Config) { c.Email.Provider = "pigeon" }, "email provider"},
		{"smtp port", func(c *Config) { c.Email.SMTPPort = 70000 }, "SMTP port"},
		{"max evaluations", func(c *Config) { c.Optimizer.MaxEvaluations = 0 }, "max_evaluations"},
		{"batch size", func(c *Config) { c.Optimizer.BatchSize = 0 }, "batch_size"},
		{"redis url", func(c *Config) { c.Audit.RedisURL = "localhost" }, "Redis URL"},
		{"postgres url", func(c *Config) { c.Audit.PostgresURL = "nope" }, "PostgreSQL URL"},
		{"location", func(c *Config) { c.Location = "Mars/Olympus" }, "unknown location"},
		{"shift hours", func(c *Config) { c.Shift.Start = 24 }, "shift hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Temperature = -1
	cfg.Optimizer.BatchSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), ";") != 1 {
		t.Errorf("expected two joined errors, got %v", err)
	}
}

func TestRequireHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.RequireLLM(); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	cfg.LLM.APIKey = "key"
	if err := cfg.RequireLLM(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := cfg.RequireEmail("to@example.com"); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	cfg.Email.From = "from@example.com"
	cfg.Email.SMTPUsername = "from@example.com"
	cfg.Email.SMTPPassword = "secret"
	if err := cfg.RequireEmail("to@example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := cfg.RequireEmail(""); err == nil || !strings.Contains(err.Error(), "recipient") {
		t.Errorf("expected missing recipient, got %v", err)
	}

	cfg.Email.Provider = "sendgrid"
	if err := cfg.RequireEmail("to@example.com"); err == nil || !strings.Contains(err.Error(), "SendGrid") {
		t.Errorf("expected missing SendGrid key, got %v", err)
	}

	if err := cfg.RequireSMS(); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	cfg.SMS.TwilioAccountSID = "AC123"
	cfg.SMS.TwilioAuthToken = "token"
	cfg.SMS.TwilioFrom = "+15005550006"
	cfg.Recipients.Phone = "+447700900000"
	if err := cfg.RequireSMS(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimeLocation(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TimeLocation().String() != "Europe/London" {
		t.Errorf("expected Europe/London, got %s", cfg.TimeLocation())
	}
	cfg.Location = "Nowhere/Special"
	if cfg.TimeLocation() != time.UTC {
		t.Error("expected UTC fallback")
	}
}
