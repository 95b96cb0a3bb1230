package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longregen/dailybrief/internal/adapters/retry"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/ports"
)

func noWaitPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return p
}

var testEmail = ports.Email{
	From:    "digest@example.com",
	To:      "reader@example.com",
	Subject: "TV & Entertainment Guide for 16/10/2026 📺",
	Text:    "Plain body",
	HTML:    "<h1>Hello</h1>",
}

func TestBuildMessage(t *testing.T) {
	raw, err := buildMessage(testEmail, time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", msg.Header.Get("To"))
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, testEmail.Subject, subject)
	assert.NotEmpty(t, msg.Header.Get("Message-ID"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var types, bodies []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		types = append(types, part.Header.Get("Content-Type"))
		bodies = append(bodies, string(body))
	}
	assert.Equal(t, []string{"text/plain; charset=UTF-8", "text/html; charset=UTF-8"}, types)
	assert.Equal(t, []string{"Plain body", "<h1>Hello</h1>"}, bodies)
}

func TestBuildMessage_RejectsHeaderInjection(t *testing.T) {
	e := testEmail
	e.Subject = "hi\r\nBcc: victim@example.com"
	_, err := buildMessage(e, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	e = testEmail
	e.To = ""
	_, err = buildMessage(e, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewSMTPMailer_RequiresCredentials(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Host: "smtp.gmail.com"}, nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.gmail.com", Username: "u", Password: "p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 465, m.cfg.Port)
}

func TestSendGridMailer_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))

		var body sgMailSend
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Personalizations, 1)
		assert.Equal(t, "reader@example.com", body.Personalizations[0].To[0].Email)
		assert.Equal(t, "default@example.com", body.From.Email)
		require.Len(t, body.Content, 2)
		assert.Equal(t, "text/plain", body.Content[0].Type)
		assert.Equal(t, "text/html", body.Content[1].Type)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m, err := NewSendGridMailer(server.URL, "sg-key", "default@example.com", nil)
	require.NoError(t, err)

	e := testEmail
	e.From = ""
	require.NoError(t, m.Send(context.Background(), e))
}

func TestSendGridMailer_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	m, err := NewSendGridMailer(server.URL, "k", "a@example.com", nil, WithSendGridRetryPolicy(noWaitPolicy()))
	require.NoError(t, err)

	err = m.Send(context.Background(), testEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	var statusErr *retry.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, int32(4), calls.Load())
}

func TestSendGridMailer_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer server.Close()

	m, err := NewSendGridMailer(server.URL, "k", "a@example.com", nil, WithSendGridRetryPolicy(noWaitPolicy()))
	require.NoError(t, err)
	err = m.Send(context.Background(), testEmail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad from")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTwilioTexter_SendSMS(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+447700900123", r.PostForm.Get("To"))
		assert.Equal(t, "+447700900000", r.PostForm.Get("From"))
		assert.Equal(t, "5 hours left", r.PostForm.Get("Body"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer server.Close()

	tx, err := NewTwilioTexter(server.URL, "AC123", "secret", "+447700900000", nil, WithTwilioRetryPolicy(noWaitPolicy()))
	require.NoError(t, err)
	require.NoError(t, tx.SendSMS(context.Background(), " +447700900123 ", "5 hours left\n"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestTwilioTexter_Validation(t *testing.T) {
	_, err := NewTwilioTexter("", "", "token", "+44", nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	tx, err := NewTwilioTexter("http://127.0.0.1:1", "AC", "t", "+44", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, tx.SendSMS(context.Background(), "+44", "  "), domain.ErrInvalidInput)
}

func TestConsoleTransports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleMailer(&buf, true).Send(context.Background(), testEmail))
	out := buf.String()
	assert.Contains(t, out, "DRY RUN: email not sent")
	assert.Contains(t, out, "Subject: "+testEmail.Subject)
	assert.Contains(t, out, "--- HTML ---\n<h1>Hello</h1>")

	buf.Reset()
	require.NoError(t, NewConsoleTexter(&buf).SendSMS(context.Background(), "+44", "hello"))
	assert.True(t, strings.HasPrefix(buf.String(), "DRY RUN: SMS not sent"))
	assert.Contains(t, buf.String(), "hello")
}
