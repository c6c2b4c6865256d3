package models

import "fmt"

// ErrorKind is the stable failure classification surfaced to API clients.
// Handlers map kinds to HTTP statuses; clients use them to decide whether
// a retry makes sense.
type ErrorKind string

const (
	KindInvalid            ErrorKind = "invalid_request"
	KindNotFound           ErrorKind = "not_found"
	KindNotAvailable       ErrorKind = "not_available"
	KindForbidden          ErrorKind = "forbidden"
	KindTooLate            ErrorKind = "too_late"
	KindAlreadyUsed        ErrorKind = "already_used"
	KindAlreadyStarted     ErrorKind = "already_started"
	KindAlreadyCompleted   ErrorKind = "already_completed"
	KindGatewayUnavailable ErrorKind = "gateway_unavailable"
	KindGatewayRejected    ErrorKind = "gateway_rejected"
	KindInternal           ErrorKind = "internal"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Retryable reports whether the caller may retry the same operation
// with backoff.
func (e *AppError) Retryable() bool {
	return e.Kind == KindGatewayUnavailable
}

// KindOf extracts the kind from an error, defaulting to internal for
// anything that is not an AppError.
func KindOf(err error) ErrorKind {
	if ae, ok := err.(*AppError); ok {
		return ae.Kind
	}
	return KindInternal
}
