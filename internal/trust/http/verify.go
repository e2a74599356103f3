package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ratewatch/ratewatch/internal/trust/service"
	"github.com/ratewatch/ratewatch/pkg/httpx"
	"github.com/ratewatch/ratewatch/pkg/slogx"
)

// VerifyHandler serves the user email verification endpoints.
type VerifyHandler struct {
	Verification *service.VerificationService
}

// HandleVerify handles POST /v1/verify.
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "malformed request body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "email and code are required"})
		return
	}

	err := h.Verification.Verify(ctx, req.Email, req.Code)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Success: true, Message: "email verified"})
	case errors.Is(err, service.ErrCodeExpired):
		httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Message: "code expired, request a new one"})
	case errors.Is(err, service.ErrAttemptsExceeded):
		httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Message: "attempt limit reached, try again tomorrow"})
	case errors.Is(err, service.ErrCodeMismatch):
		httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Message: "incorrect code"})
	case errors.Is(err, service.ErrNoActiveCode):
		// One message for never-issued and already-consumed alike.
		httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Message: "no active code for this address"})
	default:
		log.Error("verification failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}
}

// HandleIssue handles POST /v1/verify/issue (admin only). The generated
// code is not echoed back; it travels through the delivery channel owned
// by the caller.
func (h *VerifyHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "malformed request body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "email is required"})
		return
	}

	if _, err := h.Verification.IssueCode(ctx, req.Email); err != nil {
		log.Error("failed to issue verification code", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
		return
	}

	log.Info("verification code requested", "requested_by", httpx.RoleFromContext(ctx))
	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Success: true, Message: "code issued"})
}
