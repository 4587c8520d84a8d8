package model

import "time"

type Status string

const (
	StatusInitiated  Status = "INITIATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusNoAnswer   Status = "NO_ANSWER"
	StatusBusy       Status = "BUSY"
)

var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusFailed:    true,
	StatusNoAnswer:  true,
	StatusBusy:      true,
}

func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// Call is one outbound call attempt against an Application.
type Call struct {
	ID                     string
	ApplicationID          string
	AttemptNumber          int
	Status                 Status
	ExternalConversationID *string
	ExternalBatchID        *string
	Transcript             *string
	Summary                *string
	SummaryTitle           *string
	RecordingURL           *string
	DurationSeconds        *int
	InitiatedAt            time.Time
	EndedAt                *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type CallDTO struct {
	ID                     string     `json:"id"`
	ApplicationID          string     `json:"application_id"`
	AttemptNumber          int        `json:"attempt_number"`
	Status                 Status     `json:"status"`
	ExternalConversationID *string    `json:"external_conversation_id,omitempty"`
	ExternalBatchID        *string    `json:"external_batch_id,omitempty"`
	Transcript             *string    `json:"transcript,omitempty"`
	Summary                *string    `json:"summary,omitempty"`
	SummaryTitle           *string    `json:"summary_title,omitempty"`
	RecordingURL           *string    `json:"recording_url,omitempty"`
	DurationSeconds        *int       `json:"duration_seconds,omitempty"`
	InitiatedAt            time.Time  `json:"initiated_at"`
	EndedAt                *time.Time `json:"ended_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (c *Call) ToDTO() *CallDTO {
	return &CallDTO{
		ID:                     c.ID,
		ApplicationID:          c.ApplicationID,
		AttemptNumber:          c.AttemptNumber,
		Status:                 c.Status,
		ExternalConversationID: c.ExternalConversationID,
		ExternalBatchID:        c.ExternalBatchID,
		Transcript:             c.Transcript,
		Summary:                c.Summary,
		SummaryTitle:           c.SummaryTitle,
		RecordingURL:           c.RecordingURL,
		DurationSeconds:        c.DurationSeconds,
		InitiatedAt:            c.InitiatedAt,
		EndedAt:                c.EndedAt,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

// RawStatus maps the external voice-agent status vocabulary onto the internal enum, the
// reducer shared by the webhook handler and the reconciliation poller.
func RawStatus(raw string) Status {
	switch raw {
	case "done", "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	case "no_answer":
		return StatusNoAnswer
	case "busy":
		return StatusBusy
	case "in_progress", "processing":
		return StatusInProgress
	default:
		return StatusInProgress
	}
}
