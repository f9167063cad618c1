package domain

import (
	"errors"
	"time"
)

// Role is the closed set of principal roles. There is no dynamic permission
// lookup; operations check the role explicitly.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleCompany       Role = "Company"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleCompany
}

// ApprovalStatus is the account approval state. Pending is the only
// non-terminal state; Accepted and Rejected are terminal.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "Pending"
	StatusAccepted ApprovalStatus = "Accepted"
	StatusRejected ApprovalStatus = "Rejected"
)

// Terminal reports whether no further approval transition is allowed.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Account is the core account entity. Companies self-register as Pending and
// inactive; an Administrator decision moves them to Accepted (active) or
// Rejected (permanently inactive). Accounts are never deleted here.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       ApprovalStatus
	IsActive     bool
	AcceptedAt   *time.Time
	RejectedAt   *time.Time
	DecidedBy    string // administrator who approved/rejected; empty while Pending
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the account for persistence.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.Name == "" {
		return errors.New("name is required")
	}
	if !a.Role.Valid() {
		return errors.New("unknown role")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// Principal is the authenticated identity attached to a request. It is a
// snapshot: role and activity come from token claims at issuance or from a
// fresh store read at the gateway, never from a long-lived cache.
type Principal struct {
	AccountID string
	Role      Role
	SessionID string
	Active    bool
}

// IsAdministrator reports whether the principal may perform approval actions.
func (p Principal) IsAdministrator() bool {
	return p.Role == RoleAdministrator && p.Active
}
