package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a remote evaluation did not produce a value.
type FailureKind string

const (
	FailureTransport   FailureKind = "transport"
	FailureTimeout     FailureKind = "timeout"
	FailureHTTP        FailureKind = "http"
	FailureNoData      FailureKind = "no_data"
	FailureParse       FailureKind = "parse"
	FailureCircuitOpen FailureKind = "circuit_open"
)

// FailureKinds lists every kind in a stable order.
func FailureKinds() []FailureKind {
	return []FailureKind{
		FailureTransport,
		FailureTimeout,
		FailureHTTP,
		FailureNoData,
		FailureParse,
		FailureCircuitOpen,
	}
}

// -----------------------------
// RemoteError
// -----------------------------

// RemoteError is the single failure type produced by the remote evaluation
// call. Kind tells the caller which branch of the call failed.
type RemoteError struct {
	Kind       FailureKind
	FlagKey    string
	StatusCode int
	Err        error
}

func NewRemoteError(kind FailureKind, flagKey string, err error) *RemoteError {
	return &RemoteError{Kind: kind, FlagKey: flagKey, Err: err}
}

func NewHTTPError(flagKey string, statusCode int, body string) *RemoteError {
	return &RemoteError{
		Kind:       FailureHTTP,
		FlagKey:    flagKey,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, body),
	}
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote evaluation of flag %s failed (%s): %v", e.FlagKey, e.Kind, e.Err)
	}
	return fmt.Sprintf("remote evaluation of flag %s failed (%s)", e.FlagKey, e.Kind)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or "" when err is not a
// RemoteError.
func KindOf(err error) FailureKind {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind
	}
	return ""
}

func IsTimeout(err error) bool {
	return KindOf(err) == FailureTimeout
}

func IsTransport(err error) bool {
	return KindOf(err) == FailureTransport
}

func IsHTTP(err error) bool {
	return KindOf(err) == FailureHTTP
}

func IsNoData(err error) bool {
	return KindOf(err) == FailureNoData
}

func IsParse(err error) bool {
	return KindOf(err) == FailureParse
}

func IsCircuitOpen(err error) bool {
	return KindOf(err) == FailureCircuitOpen
}

// -----------------------------
// ValidationError
// -----------------------------

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
