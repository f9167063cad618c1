// Package handler exposes the authentication operations over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/identity/service"
	"submitiq/backend/internal/server/middleware"
	sessiondomain "submitiq/backend/internal/session/domain"
)

// AuthHandler serves the /v1/auth endpoints.
type AuthHandler struct {
	auth *service.AuthService
	log  *logrus.Logger
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(auth *service.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// RegisterPublic mounts the endpoints that do not require a bearer token.
func (h *AuthHandler) RegisterPublic(r *mux.Router) {
	r.HandleFunc("/v1/auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/refresh", h.refresh).Methods(http.MethodPost)
}

// RegisterProtected mounts the endpoints that run behind the gateway.
func (h *AuthHandler) RegisterProtected(r *mux.Router) {
	r.HandleFunc("/v1/auth/logout", h.logout).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/change-password", h.changePassword).Methods(http.MethodPost)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	acct, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeKindError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		ID:     acct.ID,
		Email:  acct.Email,
		Status: string(acct.Status),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	Role             string    `json:"role,omitempty"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pair, principal, err := h.auth.Login(r.Context(), req.Email, req.Password, fingerprint(r))
	if err != nil {
		// Unknown email, wrong password, and not-yet-approved accounts all
		// read the same from outside.
		h.writeAuthFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		Role:             string(principal.Role),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken, fingerprint(r))
	if err != nil {
		h.writeAuthFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req logoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	access := stripBearer(r.Header.Get("Authorization"))
	if err := h.auth.Logout(r.Context(), principal, access, req.RefreshToken); err != nil {
		h.writeKindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.auth.ChangePassword(r.Context(), principal, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		case autherrors.IsKind(err, autherrors.KindInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "current password mismatch")
		default:
			h.writeKindError(w, err)
		}
		return
	}
	// All sessions are gone; the client must log in again.
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// writeAuthFailure collapses every authentication failure to the same 401 so
// callers cannot probe which stage rejected them. Storage faults stay 503.
func (h *AuthHandler) writeAuthFailure(w http.ResponseWriter, err error) {
	kind := autherrors.KindOf(err)
	if kind == autherrors.KindStorageUnavailable {
		h.log.WithError(err).Error("auth backend unavailable")
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	h.log.WithField("kind", string(kind)).Info("authentication rejected")
	writeError(w, http.StatusUnauthorized, "invalid credentials or token")
}

func (h *AuthHandler) writeKindError(w http.ResponseWriter, err error) {
	status := statusForKind(autherrors.KindOf(err))
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	writeError(w, status, http.StatusText(status))
}

func fingerprint(r *http.Request) sessiondomain.Fingerprint {
	return sessiondomain.Fingerprint{
		IP:    middleware.ClientIP(r),
		Agent: r.UserAgent(),
	}
}
