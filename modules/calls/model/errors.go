package model

import "errors"

var (
	ErrCallNotFound        = errors.New("call not found")
	ErrTerminalCall        = errors.New("call already in a terminal status")
	ErrNoCandidateForBind  = errors.New("no initiated call available for late-binding")
	ErrExternalIDConflict  = errors.New("external conversation id already bound to another call")
)

type ErrorCode string

const (
	CodeCallNotFound       ErrorCode = "CALL_NOT_FOUND"
	CodeTerminalCall       ErrorCode = "TERMINAL_CALL"
	CodeNoCandidateForBind ErrorCode = "NO_CANDIDATE_FOR_BIND"
	CodeExternalIDConflict ErrorCode = "EXTERNAL_ID_CONFLICT"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrCallNotFound):
		return CodeCallNotFound
	case errors.Is(err, ErrTerminalCall):
		return CodeTerminalCall
	case errors.Is(err, ErrNoCandidateForBind):
		return CodeNoCandidateForBind
	case errors.Is(err, ErrExternalIDConflict):
		return CodeExternalIDConflict
	default:
		return CodeInternalError
	}
}
