// Package health serves the liveness/readiness endpoint.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"submitiq/backend/internal/server/respond"
)

// Handler reports process health and storage reachability.
type Handler struct {
	db *sql.DB
}

// NewHandler returns a Handler. db may be nil when the process runs without storage.
func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// Register mounts the health route.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/healthz", h.healthz).Methods(http.MethodGet)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "storage": "unreachable"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
