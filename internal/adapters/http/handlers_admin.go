package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/daniiyalw/ai-icap-exam/internal/application"
	"github.com/daniiyalw/ai-icap-exam/internal/contracts"
	"github.com/daniiyalw/ai-icap-exam/internal/domain"
)

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req contracts.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_login", err)
		return
	}

	res, err := h.service.AdminLogin(r.Context(), application.AdminLoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUnauthorized) {
			logHTTPOperationError(r.Context(), "admin_login", http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid admin credentials", err)
			writeJSON(w, http.StatusUnauthorized, contracts.AdminLoginResponse{
				Success: false,
				Message: "Invalid admin credentials",
			})
			return
		}
		writeMappedError(r.Context(), w, "admin_login", err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.AdminLoginResponse{
		Success:    true,
		AdminToken: res.AdminToken,
		Message:    "Admin login successful",
	})
}

func (h *Handler) adminCheckToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get("Admin-Token"))
	valid := false
	if token != "" {
		var err error
		valid, err = h.service.CheckAdminToken(r.Context(), token)
		if err != nil {
			writeMappedError(r.Context(), w, "admin_check_token", err)
			return
		}
	}
	message := "Token invalid"
	if valid {
		message = "Token check successful"
	}
	writeJSON(w, http.StatusOK, contracts.AdminTokenCheckResponse{
		TokenProvided: token != "",
		TokenValid:    valid,
		Message:       message,
	})
}

func (h *Handler) adminAddUser(w http.ResponseWriter, r *http.Request) {
	var req contracts.AddUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_add_user", err)
		return
	}

	user, err := h.service.AddUser(r.Context(), application.AddUserRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "admin_add_user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]string{"added": user.Username})
}

func (h *Handler) adminUpdateChapter(w http.ResponseWriter, r *http.Request) {
	var req contracts.UpsertChapterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_update_chapter", err)
		return
	}

	chapter, err := h.service.UpsertChapter(r.Context(), application.UpsertChapterRequest{
		Number:    req.Number,
		Name:      req.Name,
		Questions: req.Questions,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "admin_update_chapter", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"updated":         chapter.Number,
		"questions_count": len(chapter.Questions),
	})
}

func (h *Handler) adminListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.service.ListChapters(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "admin_list_chapters", err)
		return
	}
	payload := make([]contracts.ChapterPayload, 0, len(chapters))
	for _, chapter := range chapters {
		payload = append(payload, contracts.ToChapterPayload(chapter))
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"chapters": payload,
		"count":    len(payload),
	})
}

func (h *Handler) adminDeleteChapter(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeValidationError(r.Context(), w, "admin_delete_chapter", err)
		return
	}
	if err := h.service.DeleteChapter(r.Context(), number); err != nil {
		writeMappedError(r.Context(), w, "admin_delete_chapter", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": number})
}
