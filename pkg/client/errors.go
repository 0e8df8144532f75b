package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies every error returned by the client.
type Kind string

const (
	// KindConfig is missing or invalid configuration (token, base URL).
	KindConfig Kind = "config"

	// KindIllegalParameter is a caller precondition caught before any I/O.
	KindIllegalParameter Kind = "illegal_parameter"

	// KindIllegalResult is a successful exchange whose aggregate outcome
	// makes no sense, e.g. a batch submission that never learned a feed ID.
	KindIllegalResult Kind = "illegal_result"

	// KindDeserialization is a 200 response that did not match the expected shape.
	KindDeserialization Kind = "deserialization"

	// KindHTTPCode is a non-200 response without a recognizable error body.
	KindHTTPCode Kind = "http_code"

	// KindDetailedHTTPCode is a non-200 response carrying a structured error body.
	KindDetailedHTTPCode Kind = "detailed_http_code"

	// KindTransport wraps a network level failure, including context cancellation.
	KindTransport Kind = "transport"
)

// Error is the error type returned by all client operations.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return fmt.Sprintf("Configuration issue: %s", e.Message)
	case KindIllegalParameter:
		return fmt.Sprintf("Illegal parameter: %s", e.Message)
	case KindIllegalResult:
		return fmt.Sprintf("Illegal result: %s", e.Message)
	case KindDeserialization:
		return fmt.Sprintf("Problem deserializing the response: %s", e.Message)
	case KindDetailedHTTPCode:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case KindHTTPCode:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	case KindTransport:
		return fmt.Sprintf("Problem with API call: %v", e.Err)
	default:
		return e.Message
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a client *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func illegalParameter(format string, args ...any) *Error {
	return newError(KindIllegalParameter, format, args...)
}

// APIErrorData is the structured error body the service sends on failures.
type APIErrorData struct {
	Code        *int    `json:"code"`
	Error       *string `json:"error"`
	ErrorDetail *string `json:"error_detail"`
}

// Message joins error and error_detail with " | " when both are present.
func (d APIErrorData) Message() string {
	msg := ""
	if d.Error != nil {
		msg = *d.Error
	}

	if d.ErrorDetail == nil {
		return msg
	}
	if msg == "" {
		return *d.ErrorDetail
	}
	return msg + " | " + *d.ErrorDetail
}

// apiError classifies a non-200 response. A body that decodes as a JSON
// object in the APIErrorData shape yields KindDetailedHTTPCode; anything
// else (HTML, plain text, arrays, null, mismatched field types) falls back
// to a bare KindHTTPCode.
func apiError(status int, body []byte) *Error {
	var data *APIErrorData
	if err := json.Unmarshal(body, &data); err != nil || data == nil {
		return &Error{Kind: KindHTTPCode, StatusCode: status}
	}

	return &Error{
		Kind:       KindDetailedHTTPCode,
		StatusCode: status,
		Message:    data.Message(),
	}
}
