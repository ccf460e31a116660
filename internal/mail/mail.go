package mail

import (
	"context"
)

// Provider represents different transactional email providers
type Provider string

const (
	ProviderBrevo    Provider = "brevo"
	ProviderSendGrid Provider = "sendgrid"
)

type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Message is a provider-agnostic outbound email.
type Message struct {
	To          []Contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	TextContent string    `json:"text_content,omitempty"`
}

type SendResult struct {
	MessageID string   `json:"message_id"`
	Provider  Provider `json:"provider"`
}

// Mailer defines the common interface for all email providers
type Mailer interface {
	// GetProvider returns the mail provider type
	GetProvider() Provider

	// Send delivers a single message
	Send(ctx context.Context, msg Message) (*SendResult, error)
}
