package model

import "strings"

// SessionStatus represents the state of a GBP authorization session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
	SessionFailed    SessionStatus = "failed"
	SessionError     SessionStatus = "error"
)

// Terminal reports whether the session can no longer change state.
// Pending is the only non-terminal status.
func (s SessionStatus) Terminal() bool {
	return s != SessionPending && s != ""
}

// ParseSessionStatus normalizes a backend status string. The backend is
// inconsistent about casing and whitespace, so both are tolerated.
// Unknown values map to the error status rather than failing the poll.
func ParseSessionStatus(raw string) SessionStatus {
	switch SessionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case SessionPending:
		return SessionPending
	case SessionCompleted:
		return SessionCompleted
	case SessionExpired:
		return SessionExpired
	case SessionFailed:
		return SessionFailed
	default:
		return SessionError
	}
}

// AuthSession is the client view of an out-of-band OAuth grant. The
// server owns all mutation; the client only reads status.
type AuthSession struct {
	SessionID         string        `json:"session_id"`
	Status            SessionStatus `json:"status"`
	BusinessReviewURL string        `json:"business_review_url,omitempty"`
	BusinessEmail     string        `json:"business_email,omitempty"`
	ErrorMessage      string        `json:"error_message,omitempty"`
}
