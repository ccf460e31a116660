package mail

import (
	"context"
	"fmt"

	"raffle-system/internal/mail/brevo"
	"raffle-system/internal/mail/sendgrid"
)

// BrevoAdapter adapts the Brevo client to the Mailer interface
type BrevoAdapter struct {
	client *brevo.Client
}

func NewBrevoAdapter(config *brevo.Config) *BrevoAdapter {
	return &BrevoAdapter{client: brevo.NewClient(config)}
}

func (a *BrevoAdapter) GetProvider() Provider {
	return ProviderBrevo
}

func (a *BrevoAdapter) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	// One API call per recipient so a bounce never blocks the rest of a batch.
	var lastID string
	for _, to := range msg.To {
		id, err := a.client.SendEmail(ctx, brevo.SendParams{
			ToName:      to.Name,
			ToEmail:     to.Email,
			Subject:     msg.Subject,
			HTMLContent: msg.HTMLContent,
			TextContent: msg.TextContent,
		})
		if err != nil {
			return nil, err
		}
		lastID = id
	}

	return &SendResult{MessageID: lastID, Provider: ProviderBrevo}, nil
}

// SendGridAdapter adapts the SendGrid client to the Mailer interface
type SendGridAdapter struct {
	client *sendgrid.Client
}

func NewSendGridAdapter(config *sendgrid.Config) *SendGridAdapter {
	return &SendGridAdapter{client: sendgrid.NewClient(config)}
}

func (a *SendGridAdapter) GetProvider() Provider {
	return ProviderSendGrid
}

func (a *SendGridAdapter) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	var lastID string
	for _, to := range msg.To {
		id, err := a.client.SendEmail(ctx, sendgrid.SendParams{
			ToName:      to.Name,
			ToEmail:     to.Email,
			Subject:     msg.Subject,
			HTMLContent: msg.HTMLContent,
			TextContent: msg.TextContent,
		})
		if err != nil {
			return nil, err
		}
		lastID = id
	}

	return &SendResult{MessageID: lastID, Provider: ProviderSendGrid}, nil
}
