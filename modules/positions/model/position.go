package model

import "time"

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusPaused Status = "PAUSED"
	StatusClosed Status = "CLOSED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusPaused, StatusClosed:
		return true
	}
	return false
}

// Position is the role a Candidate is screened against.
type Position struct {
	ID                      string
	Title                   string
	Description             string
	Status                  Status
	QualificationCriteria   string
	VoiceAgentSystemPrompt  string
	VoiceAgentFirstMessage  string
	CallingHourStart        int
	CallingHourEnd          int
	CallRetryMax            int
	CallRetryIntervalMins   int
	FollowUpIntervalHours   int
	RejectedCVTimeoutDays   int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsMisconfigured reports the calling-hour window being empty or inverted. A position
// whose window does not satisfy start < end skips every call this cycle instead of
// failing outright.
func (p *Position) IsMisconfigured() bool {
	return p.CallingHourStart >= p.CallingHourEnd
}

// InCallingWindow reports whether wall-clock hour h (0-23, in the scheduler timezone)
// falls inside [CallingHourStart, CallingHourEnd).
func (p *Position) InCallingWindow(h int) bool {
	if p.IsMisconfigured() {
		return false
	}
	return h >= p.CallingHourStart && h < p.CallingHourEnd
}

type PositionDTO struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	Status                 Status    `json:"status"`
	QualificationCriteria  string    `json:"qualification_criteria"`
	VoiceAgentSystemPrompt string    `json:"voice_agent_system_prompt"`
	VoiceAgentFirstMessage string    `json:"voice_agent_first_message"`
	CallingHourStart       int       `json:"calling_hour_start"`
	CallingHourEnd         int       `json:"calling_hour_end"`
	CallRetryMax           int       `json:"call_retry_max"`
	CallRetryIntervalMins  int       `json:"call_retry_interval_minutes"`
	FollowUpIntervalHours  int       `json:"follow_up_interval_hours"`
	RejectedCVTimeoutDays  int       `json:"rejected_cv_timeout_days"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (p *Position) ToDTO() *PositionDTO {
	return &PositionDTO{
		ID:                     p.ID,
		Title:                  p.Title,
		Description:            p.Description,
		Status:                 p.Status,
		QualificationCriteria:  p.QualificationCriteria,
		VoiceAgentSystemPrompt: p.VoiceAgentSystemPrompt,
		VoiceAgentFirstMessage: p.VoiceAgentFirstMessage,
		CallingHourStart:       p.CallingHourStart,
		CallingHourEnd:         p.CallingHourEnd,
		CallRetryMax:           p.CallRetryMax,
		CallRetryIntervalMins:  p.CallRetryIntervalMins,
		FollowUpIntervalHours:  p.FollowUpIntervalHours,
		RejectedCVTimeoutDays:  p.RejectedCVTimeoutDays,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}
