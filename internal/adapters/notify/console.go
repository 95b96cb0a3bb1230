package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/ports"
)

// ConsoleMailer prints mail instead of sending it. Used for dry runs.
type ConsoleMailer struct {
	w        io.Writer
	showHTML bool
}

func NewConsoleMailer(w io.Writer, showHTML bool) *ConsoleMailer {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleMailer{w: w, showHTML: showHTML}
}

func (m *ConsoleMailer) Send(_ context.Context, email ports.Email) error {
	fmt.Fprintf(m.w, "DRY RUN: email not sent\nFrom: %s\nTo: %s\nSubject: %s\n\n%s\n", email.From, email.To, email.Subject, email.Text)
	if m.showHTML && email.HTML != "" {
		fmt.Fprintf(m.w, "\n--- HTML ---\n%s\n", email.HTML)
	}
	metrics.NotificationsTotal.WithLabelValues(ChannelConsole, metrics.StatusSuccess).Inc()
	return nil
}

// ConsoleTexter prints SMS bodies instead of sending them.
type ConsoleTexter struct {
	w io.Writer
}

func NewConsoleTexter(w io.Writer) *ConsoleTexter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleTexter{w: w}
}

func (t *ConsoleTexter) SendSMS(_ context.Context, to, body string) error {
	fmt.Fprintf(t.w, "DRY RUN: SMS not sent\nTo: %s\n\n%s\n", to, body)
	metrics.NotificationsTotal.WithLabelValues(ChannelConsole, metrics.StatusSuccess).Inc()
	return nil
}
