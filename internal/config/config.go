package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/longregen/dailybrief/internal/domain"
)

// Config holds all configuration for dailybrief
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Email      EmailConfig      `yaml:"email"`
	SMS        SMSConfig        `yaml:"sms"`
	Recipients RecipientsConfig `yaml:"recipients"`
	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Audit      AuditConfig      `yaml:"audit"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Log        LogConfig        `yaml:"log"`
	Shift      ShiftConfig      `yaml:"shift"`
	Area       AreaConfig       `yaml:"area"`
	Location   string           `yaml:"location"` // IANA zone used for dates and shift hours
}

// LLMConfig holds the Gemini API configuration
type LLMConfig struct {
	URL               string        `yaml:"url"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Temperature       float64       `yaml:"temperature"`
	MaxOutputTokens   int           `yaml:"max_output_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"` // 0 disables client-side throttling
}

// EmailConfig selects and configures the outbound mail transport
type EmailConfig struct {
	Provider       string `yaml:"provider"` // "smtp" or "sendgrid"
	From           string `yaml:"from"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUsername   string `yaml:"smtp_username"`
	SMTPPassword   string `yaml:"smtp_password"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	SendGridURL    string `yaml:"sendgrid_url"`
}

// SMSConfig holds Twilio credentials
type SMSConfig struct {
	TwilioAccountSID string `yaml:"twilio_account_sid"`
	TwilioAuthToken  string `yaml:"twilio_auth_token"`
	TwilioFrom       string `yaml:"twilio_from"`
	TwilioURL        string `yaml:"twilio_url"`
}

// RecipientsConfig holds per-digest destinations
type RecipientsConfig struct {
	Events string `yaml:"events"`
	Games  string `yaml:"games"`
	TV     string `yaml:"tv"`
	Phone  string `yaml:"phone"`
}

// OptimizerConfig bounds the prompt optimization loop
type OptimizerConfig struct {
	MaxEvaluations int    `yaml:"max_evaluations"`
	BatchSize      int    `yaml:"batch_size"`
	SeedFile       string `yaml:"seed_file"`
}

// AuditConfig selects where prompts, responses and reports are recorded.
// Every configured sink receives every record.
type AuditConfig struct {
	Dir         string `yaml:"dir"`
	OpenCommand string `yaml:"open_command"` // e.g. "xdg-open"; empty disables the viewer
	RedisURL    string `yaml:"redis_url"`
	RedisKey    string `yaml:"redis_key"`
	PostgresURL string `yaml:"postgres_url"`
}

// MetricsConfig controls the node-exporter textfile flush
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// TracingConfig toggles the stdout span exporter
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig selects zap's encoder and level
type LogConfig struct {
	Mode  string `yaml:"mode"` // "dev" or "prod"
	Level string `yaml:"level"`
}

// ShiftConfig personalises the night-shift SMS
type ShiftConfig struct {
	Role    string `yaml:"role"`
	PetName string `yaml:"pet_name"`
	PetKind string `yaml:"pet_kind"`
	SignOff string `yaml:"sign_off"`
	Start   int    `yaml:"start_hour"`
	End     int    `yaml:"end_hour"`
}

// AreaConfig centres the local events search
type AreaConfig struct {
	Town        string `yaml:"town"`
	County      string `yaml:"county"`
	Postcode    string `yaml:"postcode"`
	RadiusMiles int    `yaml:"radius_miles"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			URL:               "https://generativelanguage.googleapis.com",
			Model:             "gemini-2.5-pro",
			Temperature:       1.0,
			MaxOutputTokens:   32768,
			Timeout:           5 * time.Minute,
			RequestsPerMinute: 0,
		},
		Email: EmailConfig{
			Provider:    "smtp",
			SMTPHost:    "smtp.gmail.com",
			SMTPPort:    465,
			SendGridURL: "https://api.sendgrid.com",
		},
		SMS: SMSConfig{
			TwilioURL: "https://api.twilio.com",
		},
		Optimizer: OptimizerConfig{
			MaxEvaluations: 12,
			BatchSize:      5,
		},
		Audit: AuditConfig{
			Dir:      os.TempDir(),
			RedisKey: "dailybrief:audit",
		},
		Log: LogConfig{
			Mode:  "dev",
			Level: "info",
		},
		Shift: ShiftConfig{
			Role:    "night shift paramedic",
			PetName: "Kevin",
			PetKind: "naughty golden retriever",
			SignOff: "Sent from the machine",
			Start:   19,
			End:     7,
		},
		Area: AreaConfig{
			Town:        "Ashford",
			County:      "Kent",
			Postcode:    "TN23 1DS",
			RadiusMiles: 8,
		},
		Location: "Europe/London",
	}
}

// envString loads a string environment variable into the target pointer if set
func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// envFirst loads the first non-empty variable among keys
func envFirst(target *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*target = v
			return
		}
	}
}

// envInt loads an integer environment variable into the target pointer if set and valid
func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envFloat loads a float64 environment variable into the target pointer if set and valid
func envFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func envBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

func envDuration(key string, target *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}

// Load builds the configuration from defaults, the config file at path (or the
// default location when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	configPath, explicit := path, path != ""
	if !explicit {
		configPath, explicit = getConfigPath()
	}
	if err := cfg.loadFile(configPath, explicit); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML (or JSON) file over the current values. A missing file
// is only an error when it was requested explicitly.
func (c *Config) loadFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// LLM
	envString("DAILYBRIEF_LLM_URL", &c.LLM.URL)
	envFirst(&c.LLM.APIKey, "DAILYBRIEF_LLM_API_KEY", "FINAL_GEMINI_API_KEY", "GEMINI_API_KEY")
	envString("DAILYBRIEF_LLM_MODEL", &c.LLM.Model)
	envFloat("DAILYBRIEF_LLM_TEMPERATURE", &c.LLM.Temperature)
	envInt("DAILYBRIEF_LLM_MAX_OUTPUT_TOKENS", &c.LLM.MaxOutputTokens)
	envDuration("DAILYBRIEF_LLM_TIMEOUT", &c.LLM.Timeout)
	envInt("DAILYBRIEF_LLM_REQUESTS_PER_MINUTE", &c.LLM.RequestsPerMinute)

	// Email
	envString("DAILYBRIEF_EMAIL_PROVIDER", &c.Email.Provider)
	envFirst(&c.Email.From, "DAILYBRIEF_EMAIL_FROM", "SENDER_EMAIL")
	envString("DAILYBRIEF_SMTP_HOST", &c.Email.SMTPHost)
	envInt("DAILYBRIEF_SMTP_PORT", &c.Email.SMTPPort)
	envFirst(&c.Email.SMTPUsername, "DAILYBRIEF_SMTP_USERNAME", "SENDER_EMAIL")
	envFirst(&c.Email.SMTPPassword, "DAILYBRIEF_SMTP_PASSWORD", "SENDER_PASSWORD")
	envString("DAILYBRIEF_SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	envString("DAILYBRIEF_SENDGRID_URL", &c.Email.SendGridURL)

	// SMS
	envFirst(&c.SMS.TwilioAccountSID, "DAILYBRIEF_TWILIO_ACCOUNT_SID", "TWILIO_ACCOUNT_SID")
	envFirst(&c.SMS.TwilioAuthToken, "DAILYBRIEF_TWILIO_AUTH_TOKEN", "TWILIO_AUTH_TOKEN")
	envFirst(&c.SMS.TwilioFrom, "DAILYBRIEF_TWILIO_FROM", "TWILIO_PHONE_NUMBER")
	envString("DAILYBRIEF_TWILIO_URL", &c.SMS.TwilioURL)

	// Recipients
	envFirst(&c.Recipients.Events, "DAILYBRIEF_EVENTS_RECIPIENT", "PERSONAL_NEWSLETTER")
	envFirst(&c.Recipients.Games, "DAILYBRIEF_GAMES_RECIPIENT", "RECIPIENT_EMAIL")
	envFirst(&c.Recipients.TV, "DAILYBRIEF_TV_RECIPIENT", "TV_NEWSLETTER")
	envFirst(&c.Recipients.Phone, "DAILYBRIEF_PHONE", "MY_PHONE_NUMBER")

	// Optimizer
	envInt("DAILYBRIEF_MAX_EVALUATIONS", &c.Optimizer.MaxEvaluations)
	envInt("DAILYBRIEF_BATCH_SIZE", &c.Optimizer.BatchSize)
	envString("DAILYBRIEF_SEED_FILE", &c.Optimizer.SeedFile)

	// Audit
	envString("DAILYBRIEF_AUDIT_DIR", &c.Audit.Dir)
	envString("DAILYBRIEF_AUDIT_OPEN_COMMAND", &c.Audit.OpenCommand)
	envString("DAILYBRIEF_REDIS_URL", &c.Audit.RedisURL)
	envString("DAILYBRIEF_REDIS_KEY", &c.Audit.RedisKey)
	envString("DAILYBRIEF_POSTGRES_URL", &c.Audit.PostgresURL)

	envString("DAILYBRIEF_METRICS_TEXTFILE", &c.Metrics.TextfilePath)
	envBool("DAILYBRIEF_TRACING_ENABLED", &c.Tracing.Enabled)
	envString("DAILYBRIEF_LOG_MODE", &c.Log.Mode)
	envString("DAILYBRIEF_LOG_LEVEL", &c.Log.Level)

	envString("DAILYBRIEF_SHIFT_ROLE", &c.Shift.Role)
	envString("DAILYBRIEF_PET_NAME", &c.Shift.PetName)
	envString("DAILYBRIEF_PET_KIND", &c.Shift.PetKind)
	envString("DAILYBRIEF_SIGN_OFF", &c.Shift.SignOff)
	envString("DAILYBRIEF_LOCATION", &c.Location)

	envString("DAILYBRIEF_AREA_TOWN", &c.Area.Town)
	envString("DAILYBRIEF_AREA_COUNTY", &c.Area.County)
	envString("DAILYBRIEF_AREA_POSTCODE", &c.Area.Postcode)
	envInt("DAILYBRIEF_AREA_RADIUS_MILES", &c.Area.RadiusMiles)
}

// isValidURL validates that a URL has proper format
func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Validate checks that the configuration has valid values. Credentials are
// checked per command by the Require helpers.
func (c *Config) Validate() error {
	var errs []string

	// LLM validation
	if c.LLM.URL == "" {
		errs = append(errs, "LLM URL is required")
	} else if !isValidURL(c.LLM.URL) {
		errs = append(errs, "LLM URL must be a valid URL")
	}
	if c.LLM.Model == "" {
		errs = append(errs, "LLM model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "LLM temperature must be between 0 and 2")
	}
	if c.LLM.MaxOutputTokens < 1 {
		errs = append(errs, "LLM max_output_tokens must be positive")
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, "LLM timeout must be positive")
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, "LLM requests_per_minute cannot be negative")
	}

	// Email validation
	switch c.Email.Provider {
	case "smtp":
		if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
			errs = append(errs, "SMTP port must be between 1 and 65535")
		}
	case "sendgrid":
		if !isValidURL(c.Email.SendGridURL) {
			errs = append(errs, "SendGrid URL must be a valid URL")
		}
	default:
		errs = append(errs, "email provider must be 'smtp' or 'sendgrid'")
	}
	if c.SMS.TwilioURL != "" && !isValidURL(c.SMS.TwilioURL) {
		errs = append(errs, "Twilio URL must be a valid URL")
	}

	// Optimizer validation
	if c.Optimizer.MaxEvaluations < 1 {
		errs = append(errs, "optimizer max_evaluations must be at least 1")
	}
	if c.Optimizer.BatchSize < 1 {
		errs = append(errs, "optimizer batch_size must be at least 1")
	}

	// Audit validation (optional sinks, validate if set)
	if c.Audit.RedisURL != "" && !isValidURL(c.Audit.RedisURL) {
		errs = append(errs, "Redis URL must be a valid URL")
	}
	if c.Audit.PostgresURL != "" && !isValidURL(c.Audit.PostgresURL) {
		errs = append(errs, "PostgreSQL URL must be a valid URL")
	}

	if c.Shift.Start < 0 || c.Shift.Start > 23 || c.Shift.End < 0 || c.Shift.End > 23 {
		errs = append(errs, "shift hours must be between 0 and 23")
	}
	if c.Area.Town == "" {
		errs = append(errs, "area town is required")
	}
	if c.Area.RadiusMiles < 1 {
		errs = append(errs, "area radius_miles must be at least 1")
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		errs = append(errs, fmt.Sprintf("unknown location %q", c.Location))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TimeLocation returns the configured location, falling back to UTC.
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequireLLM reports whether the model API can be called.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return domain.NewDomainError(domain.ErrNotConfigured, "LLM API key (DAILYBRIEF_LLM_API_KEY or FINAL_GEMINI_API_KEY)")
	}
	return nil
}

// RequireEmail reports whether mail can be sent to recipient with the selected provider.
func (c *Config) RequireEmail(recipient string) error {
	var missing []string
	if c.Email.From == "" {
		missing = append(missing, "sender address")
	}
	if recipient == "" {
		missing = append(missing, "recipient address")
	}
	switch c.Email.Provider {
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			missing = append(missing, "SendGrid API key")
		}
	default:
		if c.Email.SMTPUsername == "" || c.Email.SMTPPassword == "" {
			missing = append(missing, "SMTP credentials")
		}
	}
	if len(missing) > 0 {
		return domain.NewDomainError(domain.ErrNotConfigured, "email: "+strings.Join(missing, ", "))
	}
	return nil
}

// RequireSMS reports whether a text can be sent to the configured phone.
func (c *Config) RequireSMS() error {
	var missing []string
	if c.SMS.TwilioAccountSID == "" || c.SMS.TwilioAuthToken == "" {
		missing = append(missing, "Twilio credentials")
	}
	if c.SMS.TwilioFrom == "" {
		missing = append(missing, "sender number")
	}
	if c.Recipients.Phone == "" {
		missing = append(missing, "recipient phone")
	}
	if len(missing) > 0 {
		return domain.NewDomainError(domain.ErrNotConfigured, "sms: "+strings.Join(missing, ", "))
	}
	return nil
}

// getConfigPath returns the path to the config file and whether it was named explicitly
func getConfigPath() (string, bool) {
	if path := os.Getenv("DAILYBRIEF_CONFIG"); path != "" {
		return path, true
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "dailybrief.yaml", false
	}

	// Check ~/.config/dailybrief/config.yaml first
	configPath := filepath.Join(homeDir, ".config", "dailybrief", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, false
	}

	// Fall back to a file in the working directory
	if _, err := os.Stat("dailybrief.yaml"); err == nil {
		return "dailybrief.yaml", false
	}

	return configPath, false
}
