package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anant-society/membership-api/internal/application/auth"
	"github.com/anant-society/membership-api/internal/domain"
	"github.com/anant-society/membership-api/internal/transport/http/middleware"
)

// userGetter is the lookup the current-session endpoint needs.
type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// SessionHandler handles login and current-session endpoints.
type SessionHandler struct {
	svc   auth.Service
	users userGetter
}

func NewSessionHandler(svc auth.Service, users userGetter) *SessionHandler {
	return &SessionHandler{svc: svc, users: users}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bearer, u, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: bearer, User: u})
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}
