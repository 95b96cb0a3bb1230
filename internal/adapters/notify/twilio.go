package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/retry"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/logger"
)

const defaultTwilioURL = "https://api.twilio.com/2010-04-01"

// TwilioTexter sends SMS through the Twilio Messages API.
type TwilioTexter struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	policy     retry.Policy
	log        *logger.Logger
}

type TwilioOption func(*TwilioTexter)

func WithTwilioHTTPClient(hc *http.Client) TwilioOption {
	return func(t *TwilioTexter) { t.httpClient = hc }
}

func WithTwilioRetryPolicy(p retry.Policy) TwilioOption {
	return func(t *TwilioTexter) { t.policy = p }
}

func NewTwilioTexter(baseURL, accountSID, authToken, from string, log *logger.Logger, opts ...TwilioOption) (*TwilioTexter, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("twilio: account sid, auth token and sender required: %w", domain.ErrNotConfigured)
	}
	if baseURL == "" {
		baseURL = defaultTwilioURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	t := &TwilioTexter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
		log:        log.With("component", "twilio"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (t *TwilioTexter) SendSMS(ctx context.Context, to, body string) error {
	to, body = strings.TrimSpace(to), strings.TrimSpace(body)
	if to == "" || body == "" {
		return fmt.Errorf("%w: sms needs a recipient and a body", domain.ErrInvalidInput)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, url.PathEscape(t.accountSID))

	var msg twilioMessage
	err := retry.Do(ctx, t.policy, func(attempt int) error {
		if attempt > 0 {
			t.log.Warn("Twilio request retrying", "attempt", attempt, "to", to)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		req.SetBasicAuth(t.accountSID, t.authToken)

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return retry.NewStatusError("twilio", resp, raw)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &msg); err != nil {
				return fmt.Errorf("twilio decode error: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(ChannelTwilio, metrics.StatusError).Inc()
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	metrics.NotificationsTotal.WithLabelValues(ChannelTwilio, metrics.StatusSuccess).Inc()
	t.log.Info("SMS sent", "to", to, "sid", msg.SID, "status", msg.Status)
	return nil
}
