// Package event emits security events (reuse detection, approval decisions,
// forced logouts) to an external stream for operator alerting. Emission is
// best-effort and never blocks the authentication path for long.
package event

import "time"

// Event types emitted by the engine.
const (
	TypeLoginFailure    = "auth.login_failure"
	TypeReuseDetected   = "auth.session_reuse_detected"
	TypeForcedLogout    = "auth.forced_logout"
	TypeAccountApproved = "approval.accepted"
	TypeAccountRejected = "approval.rejected"
)

// SecurityEvent is the wire form of one emitted event. Serialized as JSON;
// the worker derives Loki labels from EventType and Source.
type SecurityEvent struct {
	ID        string    `json:"id"`
	EventType string    `json:"eventType"`
	AccountID string    `json:"accountId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}
