package model

import "time"

// Channel is the transport a Message or CandidateReply travelled over.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// Type identifies which templated communication a Message represents.
type Type string

const (
	TypeCVRequest  Type = "cv_request"
	TypeFollowup1  Type = "cv_followup_1"
	TypeFollowup2  Type = "cv_followup_2"
	TypeOverdue    Type = "cv_overdue"
	TypeRejection  Type = "rejection"
)

// AllTypes lists every valid Type value.
var AllTypes = []Type{TypeCVRequest, TypeFollowup1, TypeFollowup2, TypeOverdue, TypeRejection}

func (t Type) IsValid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Status is the outbound delivery state of a Message.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// MessageTemplate is one channel/type combination's renderable body. The
// (Type, Channel) pair is unique — only one template may be active for a given
// combination at a time.
type MessageTemplate struct {
	ID        string
	Type      Type
	Channel   Channel
	Subject   string // unused for whatsapp, rendered into the email subject line
	Body      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is the outbound audit trail: one row per CV request, follow-up, overdue
// notice, or rejection notice actually sent (or attempted).
type Message struct {
	ID            string
	ApplicationID string
	Channel       Channel
	Type          Type
	Recipient     string
	Subject       string
	Body          string
	Status        Status
	Error         *string
	SentAt        time.Time
}

// CandidateReply is one inbound email or WhatsApp message received on a channel the
// system monitors. CandidateID/ApplicationID are resolved best-effort at ingestion
// time (see cvs.CVService.ProcessInbound for the email/WhatsApp attachment path this
// shares sender-resolution logic with) and may remain nil when resolution fails.
type CandidateReply struct {
	ID            string
	Channel       Channel
	Sender        string
	Subject       *string
	Body          string
	CandidateID   *string
	ApplicationID *string
	ReceivedAt    time.Time
}

// MessageTemplateDTO is the API representation of a MessageTemplate.
type MessageTemplateDTO struct {
	ID      string  `json:"id"`
	Type    Type    `json:"type"`
	Channel Channel `json:"channel"`
	Subject string  `json:"subject,omitempty"`
	Body    string  `json:"body"`
	Active  bool    `json:"active"`
}

func (t *MessageTemplate) ToDTO() *MessageTemplateDTO {
	return &MessageTemplateDTO{ID: t.ID, Type: t.Type, Channel: t.Channel, Subject: t.Subject, Body: t.Body, Active: t.Active}
}

// MessageDTO is the API representation of a Message.
type MessageDTO struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Channel       Channel   `json:"channel"`
	Type          Type      `json:"type"`
	Recipient     string    `json:"recipient"`
	Status        Status    `json:"status"`
	Error         *string   `json:"error,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

func (m *Message) ToDTO() *MessageDTO {
	return &MessageDTO{
		ID: m.ID, ApplicationID: m.ApplicationID, Channel: m.Channel, Type: m.Type,
		Recipient: m.Recipient, Status: m.Status, Error: m.Error, SentAt: m.SentAt,
	}
}
