package model

import "errors"

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrDuplicateCall      = errors.New("evaluation already exists for this call")
	ErrMissingFields      = errors.New("llm response missing required fields")
	ErrUnknownOutcome     = errors.New("llm returned an unrecognized outcome")
	ErrParseFailed        = errors.New("could not parse llm response as json")
)

type ErrorCode string

const (
	CodeEvaluationNotFound ErrorCode = "EVALUATION_NOT_FOUND"
	CodeDuplicateCall      ErrorCode = "DUPLICATE_CALL"
	CodeMissingFields      ErrorCode = "LLM_MISSING_FIELDS"
	CodeUnknownOutcome     ErrorCode = "LLM_UNKNOWN_OUTCOME"
	CodeParseFailed        ErrorCode = "LLM_PARSE_FAILED"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrEvaluationNotFound):
		return CodeEvaluationNotFound
	case errors.Is(err, ErrDuplicateCall):
		return CodeDuplicateCall
	case errors.Is(err, ErrMissingFields):
		return CodeMissingFields
	case errors.Is(err, ErrUnknownOutcome):
		return CodeUnknownOutcome
	case errors.Is(err, ErrParseFailed):
		return CodeParseFailed
	default:
		return CodeInternalError
	}
}
