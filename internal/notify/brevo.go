package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// Brevo sends the email alert through the Brevo transactional API
// instead of an SMTP relay.
type Brevo struct {
	APIKey string
	From   string
	To     string
	client *brevo.APIClient
}

// NewBrevo builds the channel; baseURL overrides the API root when non-empty.
func NewBrevo(apiKey, from, to, baseURL string) *Brevo {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	if baseURL != "" {
		cfg.BasePath = baseURL
	}
	return &Brevo{
		APIKey: apiKey,
		From:   from,
		To:     to,
		client: brevo.NewAPIClient(cfg),
	}
}

func (b *Brevo) Name() string { return "email" }

func (b *Brevo) Send(ctx context.Context, title, text string) error {
	if b == nil || b.APIKey == "" || b.From == "" || b.To == "" {
		return fmt.Errorf("brevo: %w", ErrMissingCredentials)
	}
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  "portwatch",
			Email: b.From,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: b.To},
		},
		Subject:     title,
		TextContent: text,
	}
	if _, _, err := b.client.TransactionalEmailsApi.SendTransacEmail(ctx, email); err != nil {
		return fmt.Errorf("brevo: %w", err)
	}
	return nil
}
