package ports

import (
	"context"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
)

// MessageTemplateRepository stores the renderable templates keyed by (Type, Channel).
type MessageTemplateRepository interface {
	GetActive(ctx context.Context, msgType model.Type, channel model.Channel) (*model.MessageTemplate, error)
	List(ctx context.Context) ([]*model.MessageTemplate, error)
	Upsert(ctx context.Context, tmpl *model.MessageTemplate) error
}

// MessageRepository is the outbound audit trail.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByApplication(ctx context.Context, applicationID string) ([]*model.Message, error)
}

// CandidateReplyRepository stores inbound replies for operator review.
type CandidateReplyRepository interface {
	Create(ctx context.Context, reply *model.CandidateReply) error
	ListByApplication(ctx context.Context, applicationID string) ([]*model.CandidateReply, error)
}

// Mailer sends a single email. Implemented by internal/platform/email against the
// Resend API.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Gateway sends a single WhatsApp text message. Implemented by internal/platform/whatsapp
// against a provider's bearer-token REST API.
type Gateway interface {
	SendText(ctx context.Context, to, body string) error
}
