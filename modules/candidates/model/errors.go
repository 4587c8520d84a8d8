package model

import "errors"

var (
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrMissingContactMethod = errors.New("candidate must have a phone or an email")
	ErrDuplicateLeadSource  = errors.New("lead source id already registered to a candidate")
)

type ErrorCode string

const (
	CodeCandidateNotFound    ErrorCode = "CANDIDATE_NOT_FOUND"
	CodeMissingContactMethod ErrorCode = "MISSING_CONTACT_METHOD"
	CodeDuplicateLeadSource  ErrorCode = "DUPLICATE_LEAD_SOURCE"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrCandidateNotFound):
		return CodeCandidateNotFound
	case errors.Is(err, ErrMissingContactMethod):
		return CodeMissingContactMethod
	case errors.Is(err, ErrDuplicateLeadSource):
		return CodeDuplicateLeadSource
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrCandidateNotFound):
		return "Candidate not found"
	case errors.Is(err, ErrMissingContactMethod):
		return "Candidate must have a phone or an email"
	case errors.Is(err, ErrDuplicateLeadSource):
		return "Lead source id already registered to a candidate"
	default:
		return "Internal server error"
	}
}
