// Package mailbox implements the cvs module's ports.InboundMailbox against the Gmail
// API. It is the one concrete adapter in this repo that needs a standing OAuth2 grant —
// every other external collaborator here (ElevenLabs, Whapi, Resend) authenticates with
// a static API key. Acquiring that grant (the interactive consent screen + refresh-token
// exchange) is out of scope for this service; an operator runs that flow once, elsewhere,
// and hands the resulting client id/secret/refresh token to this process as configuration.
package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/ports"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// GmailClient polls a Gmail inbox label for unread messages with attachments and moves
// each one to a processed label once handled, grounded on the same inbox/processed-label
// convention the scheduler's configuration already names.
type GmailClient struct {
	cfg config.MailboxConfig
}

func NewGmailClient(cfg config.MailboxConfig) *GmailClient {
	return &GmailClient{cfg: cfg}
}

// service builds a fresh Gmail API client from the configured refresh token. Gmail
// access tokens are short-lived, so this is called per poll rather than cached —
// oauth2.Config.TokenSource refreshes transparently on first use.
func (c *GmailClient) service(ctx context.Context) (*gmailapi.Service, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" || c.cfg.RefreshToken == "" {
		return nil, fmt.Errorf("mailbox: Gmail OAuth2 credentials not configured (GMAIL_CLIENT_ID/SECRET/REFRESH_TOKEN)")
	}
	oauthCfg := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmailapi.MailGoogleComScope},
	}
	token := &oauth2.Token{RefreshToken: c.cfg.RefreshToken}
	ts := oauthCfg.TokenSource(ctx, token)
	return gmailapi.NewService(ctx, option.WithTokenSource(ts))
}

func (c *GmailClient) labelID(svc *gmailapi.Service, name string) (string, error) {
	labels, err := svc.Users.Labels.List(gmailUser).Do()
	if err != nil {
		return "", fmt.Errorf("mailbox: listing Gmail labels: %w", err)
	}
	for _, l := range labels.Labels {
		if l.Name == name {
			return l.Id, nil
		}
	}
	return "", nil
}

// ListUnread returns every unread message carrying at least one attachment in
// inboxLabel, decoded attachment payloads included.
func (c *GmailClient) ListUnread(ctx context.Context, inboxLabel string) ([]ports.InboundMessage, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	labelID, err := c.labelID(svc, inboxLabel)
	if err != nil {
		return nil, err
	}
	if labelID == "" {
		return nil, fmt.Errorf("mailbox: Gmail label %q not found", inboxLabel)
	}

	list, err := svc.Users.Messages.List(gmailUser).
		LabelIds(labelID).Q("is:unread has:attachment").Do()
	if err != nil {
		return nil, fmt.Errorf("mailbox: listing unread Gmail messages: %w", err)
	}

	messages := make([]ports.InboundMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		full, err := svc.Users.Messages.Get(gmailUser, ref.Id).Format("full").Do()
		if err != nil {
			return nil, fmt.Errorf("mailbox: fetching Gmail message %s: %w", ref.Id, err)
		}
		msg, err := c.toInboundMessage(svc, full)
		if err != nil {
			return nil, err
		}
		if len(msg.Attachments) > 0 {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (c *GmailClient) toInboundMessage(svc *gmailapi.Service, m *gmailapi.Message) (ports.InboundMessage, error) {
	msg := ports.InboundMessage{ID: m.Id, BodySnippet: m.Snippet}
	if m.Payload == nil {
		return msg, nil
	}
	for _, h := range m.Payload.Headers {
		switch h.Name {
		case "From":
			msg.Sender = h.Value
		case "Subject":
			msg.Subject = h.Value
		}
	}

	var walk func(parts []*gmailapi.MessagePart) error
	walk = func(parts []*gmailapi.MessagePart) error {
		for _, part := range parts {
			if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
				att, err := svc.Users.Messages.Attachments.Get(gmailUser, m.Id, part.Body.AttachmentId).Do()
				if err != nil {
					return fmt.Errorf("mailbox: fetching Gmail attachment %s: %w", part.Filename, err)
				}
				data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(att.Data)
				if err != nil {
					return fmt.Errorf("mailbox: decoding Gmail attachment %s: %w", part.Filename, err)
				}
				msg.Attachments = append(msg.Attachments, ports.InboundAttachment{Name: part.Filename, Data: data})
			}
			if len(part.Parts) > 0 {
				if err := walk(part.Parts); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(m.Payload.Parts); err != nil {
		return msg, err
	}
	return msg, nil
}

// MarkProcessed removes messageID from inboxLabel and adds processedLabel, creating
// processedLabel first if this is the first message ever moved into it.
func (c *GmailClient) MarkProcessed(ctx context.Context, messageID, inboxLabel, processedLabel string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	inboxID, err := c.labelID(svc, inboxLabel)
	if err != nil {
		return err
	}
	processedID, err := c.labelID(svc, processedLabel)
	if err != nil {
		return err
	}
	if processedID == "" {
		created, err := svc.Users.Labels.Create(gmailUser, &gmailapi.Label{Name: processedLabel}).Do()
		if err != nil {
			return fmt.Errorf("mailbox: creating Gmail label %q: %w", processedLabel, err)
		}
		processedID = created.Id
	}

	req := &gmailapi.ModifyMessageRequest{AddLabelIds: []string{processedID}}
	if inboxID != "" {
		req.RemoveLabelIds = []string{inboxID}
	}
	if _, err := svc.Users.Messages.Modify(gmailUser, messageID, req).Do(); err != nil {
		return fmt.Errorf("mailbox: moving Gmail message %s to %q: %w", messageID, processedLabel, err)
	}
	return nil
}
