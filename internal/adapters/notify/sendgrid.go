package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/retry"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
)

const defaultSendGridURL = "https://api.sendgrid.com"

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMailSend struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// SendGridMailer posts mail to the SendGrid v3 mail/send endpoint.
type SendGridMailer struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	policy     retry.Policy
	log        *logger.Logger
}

type SendGridOption func(*SendGridMailer)

func WithSendGridHTTPClient(hc *http.Client) SendGridOption {
	return func(m *SendGridMailer) { m.httpClient = hc }
}

func WithSendGridRetryPolicy(p retry.Policy) SendGridOption {
	return func(m *SendGridMailer) { m.policy = p }
}

func NewSendGridMailer(baseURL, apiKey, from string, log *logger.Logger, opts ...SendGridOption) (*SendGridMailer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid: api key required: %w", domain.ErrNotConfigured)
	}
	if baseURL == "" {
		baseURL = defaultSendGridURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	m := &SendGridMailer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
		log:        log.With("component", "sendgrid"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *SendGridMailer) Send(ctx context.Context, email ports.Email) error {
	if email.From == "" {
		email.From = m.from
	}
	if email.From == "" || email.To == "" {
		return fmt.Errorf("%w: sendgrid needs a sender and a recipient", domain.ErrInvalidInput)
	}

	var content []sgContent
	if email.Text != "" {
		content = append(content, sgContent{Type: "text/plain", Value: email.Text})
	}
	if email.HTML != "" {
		content = append(content, sgContent{Type: "text/html", Value: email.HTML})
	}
	body, err := json.Marshal(sgMailSend{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: email.To}}}},
		From:             sgAddress{Email: email.From},
		Subject:          email.Subject,
		Content:          content,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	err = retry.Do(ctx, m.policy, func(attempt int) error {
		if attempt > 0 {
			m.log.Warn("SendGrid request retrying", "attempt", attempt, "to", email.To)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/mail/send", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return retry.NewStatusError("sendgrid", resp, raw)
		}
		return nil
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(ChannelSendGrid, metrics.StatusError).Inc()
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	metrics.NotificationsTotal.WithLabelValues(ChannelSendGrid, metrics.StatusSuccess).Inc()
	m.log.Info("Email sent", "to", email.To, "subject", email.Subject)
	return nil
}
