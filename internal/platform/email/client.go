// Package email wraps the Resend API behind the messaging module's narrow
// ports.Mailer interface, mirroring how internal/platform/llm wraps the Anthropic SDK.
package email

import (
	"context"
	"fmt"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/resend/resend-go/v2"
)

type Client struct {
	inner *resend.Client
	from  string
}

func New(cfg config.MessagingConfig) *Client {
	return &Client{inner: resend.NewClient(cfg.ResendAPIKey), from: cfg.EmailFromAddr}
}

// Send fires a single plain-text email. body is sent as both the text and HTML part
// since outbound messages here are short templated notices, not marketing HTML.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	req := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
		Html:    body,
	}
	if _, err := c.inner.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("email: resend send to %s: %w", to, err)
	}
	return nil
}
