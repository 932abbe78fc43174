package handler

import (
	"encoding/json"
	"net/http"

	"github.com/anant-society/membership-api/internal/application/registration"
	"github.com/anant-society/membership-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// VerifyHandler handles the signed-link registration flow endpoints.
type VerifyHandler struct {
	svc registration.Service
}

func NewVerifyHandler(svc registration.Service) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

func (h *VerifyHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req domain.IssueLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.svc.IssueLink(r.Context(), req); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification link sent successfully"})
	case "redeem":
		var req domain.RedeemLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		u, err := h.svc.RedeemLink(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, UserEnvelope{Message: "Registration successful!", User: u})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
