// Package apperror classifies errors by handling kind rather than by concrete type,
// so callers across the scheduler, webhook and HTTP layers can branch on how an error
// should be surfaced without importing every module's sentinel error values.
package apperror

import (
	"errors"
	"fmt"
)

// Kind enumerates the error-handling categories of the pipeline.
type Kind string

const (
	KindTransient     Kind = "transient_external"
	KindValidation    Kind = "validation"
	KindSchema        Kind = "schema"
	KindIdempotency   Kind = "idempotency_violation"
	KindInvariant     Kind = "business_invariant"
	KindConfiguration Kind = "configuration"
)

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *kindError) Unwrap() error {
	return e.err
}

// Wrap attaches a Kind to err. A nil err returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// Wrapf wraps a formatted error with a Kind.
func Wrapf(kind Kind, format string, args ...any) error {
	return Wrap(kind, fmt.Errorf(format, args...))
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var ke *kindError
	for errors.As(err, &ke) {
		if ke.kind == kind {
			return true
		}
		err = ke.err
	}
	return false
}

// KindOf returns the Kind attached to err, and false if none is attached.
func KindOf(err error) (Kind, bool) {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}
	return "", false
}
