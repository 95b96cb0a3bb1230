package ports

import (
	"context"
)

// Generator sends a prompt to a generative model and returns the raw completion text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Email is a single outbound message with both an HTML and a plain-text body.
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Texter delivers SMS messages.
type Texter interface {
	SendSMS(ctx context.Context, to, body string) error
}

// IDGenerator defines the interface for generating unique IDs
type IDGenerator interface {
	GenerateRunID() string
	GenerateRecordID() string
}
