package handik

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadResponse marks any non-200 reply from the validation service.
var ErrBadResponse = errors.New("bad server response")

// StatusError reports a non-200 reply. Message holds the server's `error`
// field when the body carried one.
type StatusError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api %s returned status %d", e.Endpoint, e.Code)
}

// Unwrap lets errors.Is match ErrBadResponse.
func (e *StatusError) Unwrap() error {
	return ErrBadResponse
}

// ErrorClass groups client failures for metrics and callers.
type ErrorClass string

const (
	ClassNone      ErrorClass = ""
	ClassTransport ErrorClass = "transport"
	ClassStatus    ErrorClass = "status"
	ClassDecode    ErrorClass = "decode"
)

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Classify reports which class err belongs to.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ClassStatus
	}
	var decErr *decodeError
	if errors.As(err, &decErr) {
		return ClassDecode
	}
	return ClassTransport
}

// StatusErrorFrom builds a StatusError, pulling the message out of a JSON
// `{"error": "..."}` body when present.
func StatusErrorFrom(endpoint string, code int, body []byte) *StatusError {
	se := &StatusError{Endpoint: endpoint, Code: code}
	if len(body) == 0 {
		return se
	}
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		se.Message = strings.TrimSpace(payload.Error)
	}
	return se
}
