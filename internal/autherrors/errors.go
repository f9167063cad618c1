// Package autherrors defines the closed failure taxonomy for the
// authentication and approval engine. Handlers collapse most kinds into a
// single generic unauthorized response; the kind itself is kept for
// server-side logging only.
package autherrors

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication, approval, or storage failure.
type Kind string

const (
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindAccountInactive       Kind = "account_inactive"
	KindMissingToken          Kind = "missing_token"
	KindMalformed             Kind = "malformed"
	KindExpired               Kind = "expired"
	KindBlacklisted           Kind = "blacklisted"
	KindSessionNotFound       Kind = "session_not_found"
	KindSessionRevoked        Kind = "session_revoked"
	KindSessionAlreadyRotated Kind = "session_already_rotated"
	KindSessionReuseDetected  Kind = "session_reuse_detected"
	KindForbidden             Kind = "forbidden"
	KindInvalidTransition     Kind = "invalid_transition"
	KindNotFound              Kind = "not_found"
	KindStorageUnavailable    Kind = "storage_unavailable"
)

// Error is a failure with a taxonomy kind and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality, so sentinel checks like
// errors.Is(err, autherrors.E(KindExpired, "")) work across wrapped errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// E returns a new Error with the given kind and message.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap returns a new Error with the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Storage wraps a repository failure as StorageUnavailable. The cause is kept
// intact; callers must not retry inside the engine.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorageUnavailable, Msg: "storage failure", Err: cause}
}

// KindOf returns the taxonomy kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
