package model

import "errors"

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrStatusChangeNotFound = errors.New("status change not found")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrDuplicateApplication = errors.New("application already exists for this candidate and position")
	ErrTerminalApplication  = errors.New("application is closed and cannot be transitioned")
)

type ErrorCode string

const (
	CodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	CodeStatusChangeNotFound ErrorCode = "STATUS_CHANGE_NOT_FOUND"
	CodeInvalidStatus        ErrorCode = "INVALID_STATUS"
	CodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	CodeTerminalApplication  ErrorCode = "TERMINAL_APPLICATION"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		return CodeApplicationNotFound
	case errors.Is(err, ErrStatusChangeNotFound):
		return CodeStatusChangeNotFound
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrDuplicateApplication):
		return CodeDuplicateApplication
	case errors.Is(err, ErrTerminalApplication):
		return CodeTerminalApplication
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		return "Application not found"
	case errors.Is(err, ErrStatusChangeNotFound):
		return "Status change not found"
	case errors.Is(err, ErrInvalidStatus):
		return "Invalid status"
	case errors.Is(err, ErrDuplicateApplication):
		return "Application already exists for this candidate and position"
	case errors.Is(err, ErrTerminalApplication):
		return "Application is closed and cannot be transitioned"
	default:
		return "Internal server error"
	}
}
