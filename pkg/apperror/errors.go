package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary mapping
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindInvalidTransition
	KindInsufficientStock
	KindDuplicateReference
	KindInternal
)

// LineError locates a validation failure within a batch request
type LineError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Error is the application error carried across layers. Message is safe to
// return to clients; Err holds the internal cause and is only logged. Lines
// is set for batch operations that report per-line failures.
type Error struct {
	Kind    Kind
	Message string
	Lines   []LineError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationBatch creates a validation error carrying per-line failures
func ValidationBatch(lines []LineError) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%d line(s) failed validation", len(lines)),
		Lines:   lines,
	}
}

// LinesOf returns the per-line failures of a batch error, if any
func LinesOf(err error) []LineError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Lines
	}
	return nil
}

// NotFound creates a not-found error
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition creates an invalid state transition error naming both states
func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("Cannot transition order from '%s' to '%s'", from, to),
	}
}

// InsufficientStock creates an insufficient stock error
func InsufficientStock(requested, current int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("Cannot remove %d items. Current stock is only %d.", requested, current),
	}
}

// DuplicateReference creates a retryable sequence-number conflict error
func DuplicateReference(reference string) *Error {
	return &Error{
		Kind:    KindDuplicateReference,
		Message: fmt.Sprintf("Reference '%s' already exists, please retry", reference),
	}
}

// Internal wraps a storage or infrastructure failure. The cause is kept for
// logging; clients only ever see the generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf extracts the Kind from any error, defaulting to KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for any error
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error to its HTTP status code. DuplicateReference maps
// to 429 because the caller owns the retry policy for sequence conflicts.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidTransition, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateReference:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
