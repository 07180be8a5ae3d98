package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classifies a failed backend call. Exactly one of the flag
// predicates holds for any given error:
//   - AuthRejected: the bearer token was refused (HTTP 401)
//   - Network: the request never produced an HTTP response
//   - Malformed: the response arrived but its payload failed validation
//
// Anything else is an ordinary server rejection carrying the backend's
// detail string when one was present.
type Error struct {
	Op        string // the logical operation, e.g. "login", "chat"
	Status    int    // HTTP status, 0 for transport failures
	Detail    string // server-provided detail, if any
	Body      string // raw response body for undecodable rejections
	RequestID string
	Err       error // underlying transport or validation error

	network   bool
	malformed bool
}

func (e *Error) Error() string {
	switch {
	case e.network:
		return fmt.Sprintf("%s: server unreachable: %v", e.Op, e.Err)
	case e.malformed:
		return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: [%d] %s", e.Op, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AuthRejected reports whether the backend refused the bearer token.
func (e *Error) AuthRejected() bool { return e.Status == http.StatusUnauthorized }

// Network reports whether the request failed before reaching the backend.
func (e *Error) Network() bool { return e.network }

// Malformed reports whether the response payload failed shape validation.
func (e *Error) Malformed() bool { return e.malformed }

// Message returns the server detail when present, otherwise the raw body.
// This mirrors what the UI shows for non-auth server rejections.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Body
}

func newNetworkError(op, requestID string, err error) *Error {
	return &Error{Op: op, RequestID: requestID, Err: err, network: true}
}

func newMalformedError(op, requestID string, err error) *Error {
	return &Error{Op: op, RequestID: requestID, Err: err, malformed: true}
}

// IsAuthRejected reports whether err is a backend auth rejection.
func IsAuthRejected(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.AuthRejected()
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Network()
}

// IsMalformed reports whether err is a response validation failure.
func IsMalformed(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Malformed()
}
