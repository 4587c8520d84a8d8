package model

import "errors"

var (
	ErrTemplateNotFound = errors.New("message template not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrNoActiveTemplate  = errors.New("no active template for this type and channel")
	ErrNoRecipient       = errors.New("candidate has no address for this channel")
	ErrGatewayFailure    = errors.New("messaging gateway rejected the request")
)

type ErrorCode string

const (
	CodeTemplateNotFound ErrorCode = "MESSAGE_TEMPLATE_NOT_FOUND"
	CodeMessageNotFound  ErrorCode = "MESSAGE_NOT_FOUND"
	CodeNoActiveTemplate ErrorCode = "NO_ACTIVE_TEMPLATE"
	CodeNoRecipient      ErrorCode = "NO_RECIPIENT_ADDRESS"
	CodeGatewayFailure   ErrorCode = "MESSAGING_GATEWAY_FAILURE"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return CodeTemplateNotFound
	case errors.Is(err, ErrMessageNotFound):
		return CodeMessageNotFound
	case errors.Is(err, ErrNoActiveTemplate):
		return CodeNoActiveTemplate
	case errors.Is(err, ErrNoRecipient):
		return CodeNoRecipient
	case errors.Is(err, ErrGatewayFailure):
		return CodeGatewayFailure
	default:
		return CodeInternalError
	}
}
