package model

import "time"

// Status is one of the 18 states of the application pipeline.
type Status string

const (
	// Pre-call
	StatusPendingCall Status = "pending_call"
	StatusCallQueued  Status = "call_queued"

	// In-call
	StatusCallInProgress Status = "call_in_progress"
	StatusCallCompleted  Status = "call_completed"
	StatusCallFailed     Status = "call_failed"

	// Scoring
	StatusScoring Status = "scoring"

	// Qualified branch
	StatusQualified    Status = "qualified"
	StatusAwaitingCV   Status = "awaiting_cv"
	StatusCVFollowup1  Status = "cv_followup_1"
	StatusCVFollowup2  Status = "cv_followup_2"
	StatusCVOverdue    Status = "cv_overdue"
	StatusCVReceived   Status = "cv_received"

	// Not-qualified branch
	StatusNotQualified        Status = "not_qualified"
	StatusAwaitingCVRejected  Status = "awaiting_cv_rejected"
	StatusCVReceivedRejected  Status = "cv_received_rejected"

	// Special
	StatusCallbackScheduled Status = "callback_scheduled"
	StatusNeedsHuman        Status = "needs_human"

	// Terminal
	StatusClosed Status = "closed"
)

// AllStatuses lists every valid Status value, for validation and fixtures.
var AllStatuses = []Status{
	StatusPendingCall, StatusCallQueued,
	StatusCallInProgress, StatusCallCompleted, StatusCallFailed,
	StatusScoring,
	StatusQualified, StatusAwaitingCV, StatusCVFollowup1, StatusCVFollowup2, StatusCVOverdue, StatusCVReceived,
	StatusNotQualified, StatusAwaitingCVRejected, StatusCVReceivedRejected,
	StatusCallbackScheduled, StatusNeedsHuman,
	StatusClosed,
}

// IsValid reports whether s is one of the defined enum values.
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// AwaitingCVStatuses is the set of statuses in which an inbound CV is expected to
// advance the pipeline (spec glossary: "awaiting-CV set").
var AwaitingCVStatuses = map[Status]bool{
	StatusAwaitingCV:         true,
	StatusCVFollowup1:        true,
	StatusCVFollowup2:        true,
	StatusCVOverdue:          true,
	StatusAwaitingCVRejected: true,
}

// Qualified is a tri-state true/false/unknown value, populated only once an
// evaluation has been recorded.
type Qualified *bool

// BoolPtr is a small helper for constructing a *bool literal inline.
func BoolPtr(b bool) *bool { return &b }

// Application is the pipeline's core aggregate: one candidate's attempt at one position.
type Application struct {
	ID                  string
	ReferenceNumber     int
	CandidateID         string
	PositionID          string
	Status              Status
	Qualified           *bool
	Score               *int
	ScoreNotes          *string
	CVReceivedAt        *time.Time
	CallbackScheduledAt *time.Time
	NeedsHumanReason    *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StatusChange is an immutable audit log row. FromStatus == ToStatus represents a
// free-text timeline note with no state change.
type StatusChange struct {
	ID            string
	ApplicationID string
	FromStatus    Status
	ToStatus      Status
	ActorID       *string
	Note          *string
	ChangedAt     time.Time
}

// IsTransition reports whether this row represents an actual state change, as opposed
// to a from==to timeline note. Reports of "number of transitions" must exclude notes.
func (c StatusChange) IsTransition() bool {
	return c.FromStatus != c.ToStatus
}

// ApplicationDTO is the read/API representation of an Application.
type ApplicationDTO struct {
	ID                  string     `json:"id"`
	ReferenceNumber     int        `json:"reference_number"`
	CandidateID         string     `json:"candidate_id"`
	PositionID          string     `json:"position_id"`
	Status              Status     `json:"status"`
	Qualified           *bool      `json:"qualified"`
	Score               *int       `json:"score,omitempty"`
	ScoreNotes          *string    `json:"score_notes,omitempty"`
	CVReceivedAt        *time.Time `json:"cv_received_at,omitempty"`
	CallbackScheduledAt *time.Time `json:"callback_scheduled_at,omitempty"`
	NeedsHumanReason    *string    `json:"needs_human_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ToDTO converts an Application to its API representation.
func (a *Application) ToDTO() *ApplicationDTO {
	return &ApplicationDTO{
		ID:                  a.ID,
		ReferenceNumber:     a.ReferenceNumber,
		CandidateID:         a.CandidateID,
		PositionID:          a.PositionID,
		Status:              a.Status,
		Qualified:           a.Qualified,
		Score:               a.Score,
		ScoreNotes:          a.ScoreNotes,
		CVReceivedAt:        a.CVReceivedAt,
		CallbackScheduledAt: a.CallbackScheduledAt,
		NeedsHumanReason:    a.NeedsHumanReason,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// StatusChangeDTO is the read representation of a StatusChange.
type StatusChangeDTO struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	FromStatus    Status    `json:"from_status"`
	ToStatus      Status    `json:"to_status"`
	ActorID       *string   `json:"actor_id,omitempty"`
	Note          *string   `json:"note,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

func (c *StatusChange) ToDTO() *StatusChangeDTO {
	return &StatusChangeDTO{
		ID:            c.ID,
		ApplicationID: c.ApplicationID,
		FromStatus:    c.FromStatus,
		ToStatus:      c.ToStatus,
		ActorID:       c.ActorID,
		Note:          c.Note,
		ChangedAt:     c.ChangedAt,
	}
}
