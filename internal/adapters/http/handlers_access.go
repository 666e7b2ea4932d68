package http

import (
	"errors"
	"net/http"

	"github.com/daniiyalw/ai-icap-exam/internal/application"
	"github.com/daniiyalw/ai-icap-exam/internal/contracts"
	"github.com/daniiyalw/ai-icap-exam/internal/domain"
)

// verify answers the chapter access check. The response is the flat
// {valid, mode, username} contract; the access client depends on reading
// valid at the response root, so this endpoint never uses the envelope.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req contracts.VerifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify", err)
		return
	}
	if req.Chapter == 0 {
		req.Chapter = domain.DemoChapter
	}

	verification, err := h.service.VerifyAccess(r.Context(), req.Token, req.Chapter)
	if err != nil {
		writeMappedError(r.Context(), w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.VerifyResponse{
		Valid:    verification.Valid,
		Mode:     verification.Mode,
		Username: verification.Username,
	})
}

// login issues a bearer token. Success and failure both use the legacy
// flat {success, ...} contract.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req contracts.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	res, err := h.service.Login(r.Context(), application.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrInvalidInput) {
			logHTTPOperationError(r.Context(), "login", http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", err)
			writeJSON(w, http.StatusUnauthorized, contracts.LoginResponse{
				Success: false,
				Message: "Invalid credentials",
			})
			return
		}
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.LoginResponse{
		Success:  true,
		Token:    res.Token,
		Username: res.Username,
	})
}
