// Package apierr classifies failures from the dashboard backend into the
// three kinds the rest of the app handles differently: transport errors
// (silently retried by polling, retry affordance elsewhere), structured
// API errors (message surfaced verbatim), and decode errors (the backend
// sent an unexpected shape).
package apierr

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// APIError is an HTTP non-2xx response carrying a structured {message}
// body. Message is surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// DecodeError means the backend responded 2xx but the body did not match
// the expected envelope. It is one handled error kind, not a field-by-
// field silent defaulting.
type DecodeError struct {
	Endpoint string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Endpoint, e.Reason)
}

// AsAPIError unwraps an APIError from the chain.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsDecode reports whether the error chain contains a DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsTransient returns true for network-level failures that a polling
// loop should ride out: timeouts, resets, DNS trouble. Application
// errors (APIError, DecodeError) are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ae *APIError
	if errors.As(err, &ae) {
		return false
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
		"connection refused",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
