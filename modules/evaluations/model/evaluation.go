package model

import "time"

// Outcome is the LLM's qualification verdict for a completed call.
type Outcome string

const (
	OutcomeQualified          Outcome = "qualified"
	OutcomeNotQualified       Outcome = "not_qualified"
	OutcomeCallbackRequested  Outcome = "callback_requested"
	OutcomeNeedsHuman         Outcome = "needs_human"
)

// AllOutcomes lists every valid Outcome value.
var AllOutcomes = []Outcome{OutcomeQualified, OutcomeNotQualified, OutcomeCallbackRequested, OutcomeNeedsHuman}

// IsValid reports whether o is one of the defined enum values.
func (o Outcome) IsValid() bool {
	for _, v := range AllOutcomes {
		if v == o {
			return true
		}
	}
	return false
}

// Criterion is one qualification-criterion line item from the LLM's reasoning, kept
// for operator review alongside the overall score.
type Criterion struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Note   string `json:"note"`
}

// Evaluation is one LLM scoring result for a completed call. At most one Evaluation
// exists per Call — enforced by a pre-check and a row-locked re-check during insert.
type Evaluation struct {
	ID                   string
	ApplicationID        string
	CallID               string
	Outcome              Outcome
	Qualified            bool
	Score                int
	Reasoning            string
	Criteria             []Criterion
	DisqualifyingFactor  *string
	CallbackRequested    bool
	CallbackNotes        *string
	CallbackAt           *time.Time
	NeedsHuman           bool
	NeedsHumanNotes      *string
	RawResponse          string
	EvaluatedAt          time.Time
	CreatedAt            time.Time
}

// EvaluationDTO is the API representation of an Evaluation.
type EvaluationDTO struct {
	ID                  string      `json:"id"`
	ApplicationID       string      `json:"application_id"`
	CallID              string      `json:"call_id"`
	Outcome             Outcome     `json:"outcome"`
	Qualified           bool        `json:"qualified"`
	Score               int         `json:"score"`
	Reasoning           string      `json:"reasoning"`
	Criteria            []Criterion `json:"criteria,omitempty"`
	DisqualifyingFactor *string     `json:"disqualifying_factor,omitempty"`
	CallbackRequested   bool        `json:"callback_requested"`
	CallbackNotes       *string     `json:"callback_notes,omitempty"`
	CallbackAt          *time.Time  `json:"callback_at,omitempty"`
	NeedsHuman          bool        `json:"needs_human"`
	NeedsHumanNotes     *string     `json:"needs_human_notes,omitempty"`
	EvaluatedAt         time.Time   `json:"evaluated_at"`
}

func (e *Evaluation) ToDTO() *EvaluationDTO {
	return &EvaluationDTO{
		ID:                  e.ID,
		ApplicationID:       e.ApplicationID,
		CallID:              e.CallID,
		Outcome:             e.Outcome,
		Qualified:           e.Qualified,
		Score:               e.Score,
		Reasoning:           e.Reasoning,
		Criteria:            e.Criteria,
		DisqualifyingFactor: e.DisqualifyingFactor,
		CallbackRequested:   e.CallbackRequested,
		CallbackNotes:       e.CallbackNotes,
		CallbackAt:          e.CallbackAt,
		NeedsHuman:          e.NeedsHuman,
		NeedsHumanNotes:     e.NeedsHumanNotes,
		EvaluatedAt:         e.EvaluatedAt,
	}
}

// LLMResult is the parsed, validated shape of the LLM's JSON response, decoupled
// from the persisted Evaluation so parsing failures never leave a half-built model.
type LLMResult struct {
	Outcome             Outcome
	Qualified           bool
	Score               int
	Reasoning           string
	Criteria            []Criterion
	DisqualifyingFactor *string
	CallbackRequested   bool
	CallbackNotes       *string
	NeedsHuman          bool
	NeedsHumanNotes     *string
	CallbackAt          *time.Time
	Raw                 string
}
