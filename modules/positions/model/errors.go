package model

import "errors"

var (
	ErrPositionNotFound     = errors.New("position not found")
	ErrInvalidStatus        = errors.New("invalid position status")
	ErrInvalidCallingWindow = errors.New("calling_hour_start must be less than calling_hour_end")
	ErrInvalidTuning        = errors.New("numeric tuning parameters must be positive")
)

type ErrorCode string

const (
	CodePositionNotFound     ErrorCode = "POSITION_NOT_FOUND"
	CodeInvalidStatus        ErrorCode = "INVALID_STATUS"
	CodeInvalidCallingWindow ErrorCode = "INVALID_CALLING_WINDOW"
	CodeInvalidTuning        ErrorCode = "INVALID_TUNING"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrPositionNotFound):
		return CodePositionNotFound
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrInvalidCallingWindow):
		return CodeInvalidCallingWindow
	case errors.Is(err, ErrInvalidTuning):
		return CodeInvalidTuning
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPositionNotFound):
		return "Position not found"
	case errors.Is(err, ErrInvalidStatus):
		return "Invalid position status"
	case errors.Is(err, ErrInvalidCallingWindow):
		return "calling_hour_start must be less than calling_hour_end"
	case errors.Is(err, ErrInvalidTuning):
		return "Numeric tuning parameters must be positive"
	default:
		return "Internal server error"
	}
}
