package model

import "errors"

var (
	ErrCVUploadNotFound         = errors.New("cv upload not found")
	ErrUnmatchedInboundNotFound = errors.New("unmatched inbound not found")
	ErrAlreadyResolved          = errors.New("unmatched inbound already resolved")
	ErrExtractionFailed         = errors.New("could not extract text from cv attachment")
	ErrUnsupportedContentType   = errors.New("unsupported cv attachment content type")
)

type ErrorCode string

const (
	CodeCVUploadNotFound         ErrorCode = "CV_UPLOAD_NOT_FOUND"
	CodeUnmatchedInboundNotFound ErrorCode = "UNMATCHED_INBOUND_NOT_FOUND"
	CodeAlreadyResolved          ErrorCode = "UNMATCHED_INBOUND_ALREADY_RESOLVED"
	CodeExtractionFailed         ErrorCode = "CV_EXTRACTION_FAILED"
	CodeUnsupportedContentType   ErrorCode = "CV_UNSUPPORTED_CONTENT_TYPE"
	CodeInternalError            ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrCVUploadNotFound):
		return CodeCVUploadNotFound
	case errors.Is(err, ErrUnmatchedInboundNotFound):
		return CodeUnmatchedInboundNotFound
	case errors.Is(err, ErrAlreadyResolved):
		return CodeAlreadyResolved
	case errors.Is(err, ErrExtractionFailed):
		return CodeExtractionFailed
	case errors.Is(err, ErrUnsupportedContentType):
		return CodeUnsupportedContentType
	default:
		return CodeInternalError
	}
}
