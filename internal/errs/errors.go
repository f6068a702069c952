// Package errs defines the error taxonomy for holder analysis.
// Every failure the analyzer can surface is tagged with a Kind; a single
// mapping function turns a Kind into a transport-level HTTP status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an analysis failure.
type Kind int

const (
	// KindUnexpected is anything unclassified. Internals are logged, not
	// exposed to the caller.
	KindUnexpected Kind = iota

	// KindValidation is a malformed or out-of-range input parameter.
	// Raised before any network call is made.
	KindValidation

	// KindSourceUnavailable means the external data source is unreachable,
	// returned a malformed response, or exhausted its retries.
	KindSourceUnavailable

	// KindNoHolders means the mint has zero holder accounts.
	KindNoHolders

	// KindDecimalsUnavailable means the mint metadata lookup failed;
	// most likely the mint address is invalid.
	KindDecimalsUnavailable

	// KindInsufficientHolders means filtering left fewer eligible holders
	// than requested. Carries both counts.
	KindInsufficientHolders

	// KindTimeout means the whole operation exceeded its time budget.
	KindTimeout
)

// Error is a tagged analysis error.
type Error struct {
	Kind    Kind
	Message string

	// Available and Requested are set for KindInsufficientHolders.
	Available int
	Requested int

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to a transport status class.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindDecimalsUnavailable, KindInsufficientHolders:
		return http.StatusBadRequest
	case KindSourceUnavailable:
		return http.StatusServiceUnavailable
	case KindNoHolders:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports an input parameter violation.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// SourceUnavailable wraps a data source failure.
func SourceUnavailable(cause error) *Error {
	return &Error{
		Kind:    KindSourceUnavailable,
		Message: "token account source unavailable",
		cause:   cause,
	}
}

// NoHolders reports a mint with zero holder accounts.
func NoHolders() *Error {
	return &Error{Kind: KindNoHolders, Message: "no holders found for this token"}
}

// DecimalsUnavailable wraps a failed mint metadata lookup.
func DecimalsUnavailable(cause error) *Error {
	return &Error{
		Kind:    KindDecimalsUnavailable,
		Message: "could not resolve token decimals; check the mint address",
		cause:   cause,
	}
}

// InsufficientHolders reports that filtering left fewer eligible holders
// than requested. Both counts are included so the caller can relax
// constraints.
func InsufficientHolders(available, requested int) *Error {
	return &Error{
		Kind: KindInsufficientHolders,
		Message: fmt.Sprintf("not enough eligible holders: found %d, but %d were requested",
			available, requested),
		Available: available,
		Requested: requested,
	}
}

// Timeout reports that the operation exceeded its time budget. The message
// includes guidance for narrowing the query.
func Timeout() *Error {
	return &Error{
		Kind: KindTimeout,
		Message: "analysis timed out: the token has too many holders to process; " +
			"try excluding more top holders, raising the minimum holdings, " +
			"or requesting fewer holders",
	}
}

// Unexpected wraps an unclassified failure. The caller-visible message is
// generic; the cause is preserved for logging only.
func Unexpected(cause error) *Error {
	return &Error{
		Kind:    KindUnexpected,
		Message: "an unexpected error occurred",
		cause:   cause,
	}
}

// KindOf extracts the Kind from err, or KindUnexpected if err is not a
// tagged analysis error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// AsError returns err as a tagged *Error, wrapping unclassified errors as
// KindUnexpected.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected(err)
}
