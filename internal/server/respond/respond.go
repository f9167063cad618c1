// Package respond centralizes JSON response encoding and the mapping from
// error kinds to HTTP status codes.
package respond

import (
	"encoding/json"
	"net/http"

	"submitiq/backend/internal/autherrors"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// StatusForKind maps an error kind to an HTTP status code.
func StatusForKind(kind autherrors.Kind) int {
	switch kind {
	case autherrors.KindInvalidCredentials,
		autherrors.KindMissingToken,
		autherrors.KindMalformed,
		autherrors.KindExpired,
		autherrors.KindBlacklisted,
		autherrors.KindSessionNotFound,
		autherrors.KindSessionRevoked,
		autherrors.KindSessionAlreadyRotated,
		autherrors.KindSessionReuseDetected:
		return http.StatusUnauthorized
	case autherrors.KindAccountInactive, autherrors.KindForbidden:
		return http.StatusForbidden
	case autherrors.KindInvalidTransition:
		return http.StatusConflict
	case autherrors.KindNotFound:
		return http.StatusNotFound
	case autherrors.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
