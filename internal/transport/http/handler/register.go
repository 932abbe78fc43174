package handler

import (
	"encoding/json"
	"net/http"

	"github.com/anant-society/membership-api/internal/application/registration"
	"github.com/anant-society/membership-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// RegisterHandler handles the OTP registration flow endpoints.
type RegisterHandler struct {
	svc registration.Service
}

func NewRegisterHandler(svc registration.Service) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

func (h *RegisterHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "send-code":
		var req domain.SendCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.svc.SendCode(r.Context(), req); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent."})
	case "create-user":
		var req domain.CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		u, err := h.svc.CreateUser(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, UserEnvelope{Message: "Registration successful!", User: u})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
