// Package errors defines the typed domain errors returned by the escrow engine.
// Every failure carries a stable Kind (used for HTTP mapping) and a stable
// Code (used by clients), plus a human-readable message.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError.
type Kind string

const (
	KindNotFound               Kind = "NotFound"
	KindNotAuthorized          Kind = "NotAuthorized"
	KindInvalidStateTransition Kind = "InvalidStateTransition"
	KindDuplicateDispute       Kind = "DuplicateDispute"
	KindValidation             Kind = "ValidationError"
	KindCancellationNotAllowed Kind = "CancellationNotAllowed"
	KindInternal               Kind = "Internal"
)

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code, so copies produced by
// Withf still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Withf returns a copy of e with a more specific message.
func (e *DomainError) Withf(format string, args ...any) *DomainError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e carrying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// KindOf reports the Kind of err, or KindInternal when err is not a DomainError.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// As is a shorthand for extracting the DomainError from an error chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	ok := stderrors.As(err, &de)
	return de, ok
}

func newError(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}
