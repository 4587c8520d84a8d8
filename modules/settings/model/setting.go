// Package model holds the persisted operator-toggleable settings this system checks at
// runtime instead of baking into process-start configuration — currently just the single
// mailbox-poll switch poll_cv_inbox is gated behind.
package model

import "time"

// MailboxPollEnabledKey is the system_settings row poll_cv_inbox reads each tick.
const MailboxPollEnabledKey = "mailbox_poll_enabled"

// Setting is a single named boolean switch an operator can flip without redeploying.
type Setting struct {
	Key       string
	Enabled   bool
	UpdatedAt time.Time
}
