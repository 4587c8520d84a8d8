package model

import "time"

// Candidate is the person behind one or more Applications.
type Candidate struct {
	ID             string
	FirstName      string
	LastName       string
	FullName       string
	Phone          string
	Email          string
	WhatsAppNumber *string
	LeadSourceID   *string
	FormAnswers    map[string]string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CandidateDTO is the API representation of a Candidate.
type CandidateDTO struct {
	ID             string            `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	FullName       string            `json:"full_name"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	WhatsAppNumber *string           `json:"whatsapp_number,omitempty"`
	FormAnswers    map[string]string `json:"form_answers,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (c *Candidate) ToDTO() *CandidateDTO {
	return &CandidateDTO{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		FullName:       c.FullName,
		Phone:          c.Phone,
		Email:          c.Email,
		WhatsAppNumber: c.WhatsAppNumber,
		FormAnswers:    c.FormAnswers,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
