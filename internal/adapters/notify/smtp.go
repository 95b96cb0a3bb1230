// Package notify delivers rendered digests over email and SMS.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/domain"
	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
)

const (
	ChannelSMTP     = "smtp"
	ChannelSendGrid = "sendgrid"
	ChannelTwilio   = "twilio"
	ChannelConsole  = "console"
)

// SMTPConfig describes an SMTP submission server reached over implicit TLS.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer sends multipart/alternative mail through an SMTPS server such
// as smtp.gmail.com:465.
type SMTPMailer struct {
	cfg SMTPConfig
	log *logger.Logger
	now func() time.Time
}

func NewSMTPMailer(cfg SMTPConfig, log *logger.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp: host and credentials required: %w", domain.ErrNotConfigured)
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SMTPMailer{cfg: cfg, log: log.With("component", "smtp"), now: time.Now}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email ports.Email) error {
	if email.From == "" {
		email.From = m.cfg.Username
	}
	msg, err := buildMessage(email, m.now())
	if err != nil {
		return err
	}

	err = m.deliver(ctx, email.From, email.To, msg)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(ChannelSMTP, metrics.StatusError).Inc()
		return fmt.Errorf("%w: smtp: %v", domain.ErrDeliveryFailed, err)
	}
	metrics.NotificationsTotal.WithLabelValues(ChannelSMTP, metrics.StatusSuccess).Inc()
	m.log.Info("Email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, from, to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.cfg.Timeout},
		Config:    &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.cfg.Timeout))
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage renders an RFC 5322 message with text and HTML alternatives.
func buildMessage(email ports.Email, now time.Time) ([]byte, error) {
	if email.To == "" {
		return nil, fmt.Errorf("%w: recipient required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(email.To+email.From+email.Subject, "\r\n") {
		return nil, fmt.Errorf("%w: header contains a line break", domain.ErrInvalidInput)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct{ contentType, content string }{
		{"text/plain; charset=UTF-8", email.Text},
		{"text/html; charset=UTF-8", email.HTML},
	} {
		if part.content == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	headers := []struct{ k, v string }{
		{"From", email.From},
		{"To", email.To},
		{"Subject", mime.QEncoding.Encode("utf-8", email.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", "<" + uuid.NewString() + "@dailybrief>"},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h.k, h.v)
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
