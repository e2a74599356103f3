package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ratewatch/ratewatch/internal/trust/service"
	"github.com/ratewatch/ratewatch/pkg/httpx"
	"github.com/ratewatch/ratewatch/pkg/slogx"
)

// AdminHandler serves the admin auth endpoint: password login and, with
// action=change_password, credential rotation.
type AdminHandler struct {
	Credentials *service.CredentialService
	Sessions    *service.SessionService
}

// HandleLogin handles POST /v1/admin/login.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "malformed request body"})
		return
	}
	if req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "password is required"})
		return
	}

	switch req.Action {
	case "", "login":
		h.login(w, r, req)
	case "change_password":
		h.changePassword(w, r, req)
	default:
		log.Warn("unknown admin action", "action", req.Action)
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "unknown action"})
	}
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.Credentials.Verify(ctx, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "invalid credentials"})
			return
		}
		log.Error("credential check failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}

	token, expiresIn, err := h.Sessions.Issue(service.AdminRole)
	if err != nil {
		log.Error("failed to issue session token", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int64(expiresIn.Seconds()),
	})
}

func (h *AdminHandler) changePassword(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if req.NewPassword == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "new_password is required"})
		return
	}

	if err := h.Credentials.Rotate(ctx, req.Password, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "invalid credentials"})
			return
		}
		log.Error("credential rotation failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{Success: true})
}
