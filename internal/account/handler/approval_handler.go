// Package handler exposes the administrator approval operations over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	accountdomain "submitiq/backend/internal/account/domain"
	"submitiq/backend/internal/approval"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/server/middleware"
	"submitiq/backend/internal/server/respond"
)

// ApprovalHandler serves the /v1/accounts endpoints. All routes run behind
// the gateway; the workflow itself enforces the Administrator role.
type ApprovalHandler struct {
	workflow *approval.Workflow
	log      *logrus.Logger
}

// NewApprovalHandler returns an ApprovalHandler.
func NewApprovalHandler(workflow *approval.Workflow, log *logrus.Logger) *ApprovalHandler {
	return &ApprovalHandler{workflow: workflow, log: log}
}

// Register mounts the approval routes on a gateway-protected router.
func (h *ApprovalHandler) Register(r *mux.Router) {
	r.HandleFunc("/v1/accounts/pending", h.listPending).Methods(http.MethodGet)
	r.HandleFunc("/v1/accounts/{id}/approve", h.approve).Methods(http.MethodPost)
	r.HandleFunc("/v1/accounts/{id}/reject", h.reject).Methods(http.MethodPost)
}

type accountSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *ApprovalHandler) listPending(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.workflow.ListPending(r.Context(), principal)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	out := make([]accountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountSummary{
			ID:        a.ID,
			Name:      a.Name,
			Email:     a.Email,
			Status:    string(a.Status),
			CreatedAt: a.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"accounts": out})
}

func (h *ApprovalHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, accountdomain.StatusAccepted)
}

func (h *ApprovalHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, accountdomain.StatusRejected)
}

func (h *ApprovalHandler) decide(w http.ResponseWriter, r *http.Request, target accountdomain.ApprovalStatus) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := mux.Vars(r)["id"]
	if accountID == "" {
		respond.Error(w, http.StatusBadRequest, "missing account id")
		return
	}

	var err error
	if target == accountdomain.StatusAccepted {
		err = h.workflow.Approve(r.Context(), accountID, principal)
	} else {
		err = h.workflow.Reject(r.Context(), accountID, principal)
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"id":     accountID,
		"status": string(target),
	})
}

func (h *ApprovalHandler) writeErr(w http.ResponseWriter, err error) {
	kind := autherrors.KindOf(err)
	status := respond.StatusForKind(kind)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("approval request failed")
	}
	respond.Error(w, status, http.StatusText(status))
}
