package handler

import (
	"net/http"
	"strings"

	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/server/respond"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	respond.JSON(w, status, v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respond.Error(w, status, msg)
}

func statusForKind(kind autherrors.Kind) int {
	return respond.StatusForKind(kind)
}

func stripBearer(header string) string {
	const prefix = "bearer "
	v := strings.TrimSpace(header)
	if len(v) < len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(v[len(prefix):])
}
