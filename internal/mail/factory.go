package mail

import (
	"fmt"

	"raffle-system/internal/mail/brevo"
	"raffle-system/internal/mail/sendgrid"
	"raffle-system/internal/status"
)

// Factory creates mailer instances based on provider type
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateMailer creates a mailer instance based on provider type and configuration
func (f *Factory) CreateMailer(provider Provider, config interface{}) (Mailer, error) {
	switch provider {
	case ProviderBrevo:
		brevoConfig, ok := config.(*brevo.Config)
		if !ok {
			return nil, fmt.Errorf("invalid Brevo config type, expected *brevo.Config")
		}
		return NewBrevoAdapter(brevoConfig), nil

	case ProviderSendGrid:
		sendgridConfig, ok := config.(*sendgrid.Config)
		if !ok {
			return nil, fmt.Errorf("invalid SendGrid config type, expected *sendgrid.Config")
		}
		return NewSendGridAdapter(sendgridConfig), nil

	default:
		return nil, fmt.Errorf("%w: %s", status.ErrProviderNotFound, provider)
	}
}

// GetSupportedProviders returns list of supported mail providers
func (f *Factory) GetSupportedProviders() []Provider {
	return []Provider{
		ProviderBrevo,
		ProviderSendGrid,
	}
}
