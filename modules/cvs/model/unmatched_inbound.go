package model

import "time"

// Channel identifies the inbound transport an UnmatchedInbound arrived on.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// ParseChannel normalises a free-form channel string from a webhook payload to a
// Channel, defaulting unrecognised values to ChannelEmail (the inbound source this
// system retrieves attachments from most often).
func ParseChannel(s string) Channel {
	switch Channel(s) {
	case ChannelWhatsApp:
		return ChannelWhatsApp
	default:
		return ChannelEmail
	}
}

// UnmatchedInbound holds an attachment the matching cascade could not attribute to any
// candidate, pending manual recruiter assignment via the CV Inbox.
type UnmatchedInbound struct {
	ID                      string
	Channel                 Channel
	Sender                  string
	Subject                 *string
	BodySnippet             *string
	AttachmentName          *string
	FilePath                *string
	RawPayload              []byte
	ReceivedAt              time.Time
	Resolved                bool
	ResolvedByApplicationID *string
	ResolvedAt              *time.Time
}

// UnmatchedInboundDTO is the API representation of an UnmatchedInbound.
type UnmatchedInboundDTO struct {
	ID                      string     `json:"id"`
	Channel                 Channel    `json:"channel"`
	Sender                  string     `json:"sender"`
	Subject                 *string    `json:"subject,omitempty"`
	BodySnippet             *string    `json:"body_snippet,omitempty"`
	AttachmentName          *string    `json:"attachment_name,omitempty"`
	ReceivedAt              time.Time  `json:"received_at"`
	Resolved                bool       `json:"resolved"`
	ResolvedByApplicationID *string    `json:"resolved_by_application_id,omitempty"`
	ResolvedAt              *time.Time `json:"resolved_at,omitempty"`
}

func (u *UnmatchedInbound) ToDTO() *UnmatchedInboundDTO {
	return &UnmatchedInboundDTO{
		ID:                      u.ID,
		Channel:                 u.Channel,
		Sender:                  u.Sender,
		Subject:                 u.Subject,
		BodySnippet:             u.BodySnippet,
		AttachmentName:          u.AttachmentName,
		ReceivedAt:              u.ReceivedAt,
		Resolved:                u.Resolved,
		ResolvedByApplicationID: u.ResolvedByApplicationID,
		ResolvedAt:              u.ResolvedAt,
	}
}
