package domain

import "time"

// AuditLog is one recorded security-relevant action. AccountID is the actor
// (empty for anonymous attempts, e.g. failed logins).
type AuditLog struct {
	ID        string
	AccountID string
	Action    string // e.g. "auth.login", "approval.approve"
	Resource  string // the acted-on entity id, if any
	IP        string
	Metadata  string // free-form JSON or text, e.g. the failure kind
	CreatedAt time.Time
}
