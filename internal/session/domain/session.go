package domain

import "time"

// Status is the session lifecycle state. Active sessions back a live refresh
// token; Rotated sessions have been superseded; Revoked sessions are dead.
type Status string

const (
	StatusActive  Status = "active"
	StatusRotated Status = "rotated"
	StatusRevoked Status = "revoked"
)

// Fingerprint binds a refresh token to the requester that obtained it:
// origin address plus client-agent string.
type Fingerprint struct {
	IP    string
	Agent string
}

// Session is the server-side record backing a refresh token. At most one
// session exists per ID; rotation marks the old session Rotated and links the
// fresh one back via PreviousID for audit and chain revocation.
type Session struct {
	ID            string
	AccountID     string
	Status        Status
	IssuedIP      string
	IssuedAgent   string
	PreviousID    string // session this one rotated from; empty for the first in a chain
	ExpiresAt     time.Time
	LastRotatedAt *time.Time
	CreatedAt     time.Time
}

// IssuedFingerprint returns the fingerprint recorded at issuance.
func (s *Session) IssuedFingerprint() Fingerprint {
	return Fingerprint{IP: s.IssuedIP, Agent: s.IssuedAgent}
}
