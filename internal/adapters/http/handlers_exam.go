package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/daniiyalw/ai-icap-exam/internal/application"
	"github.com/daniiyalw/ai-icap-exam/internal/contracts"
)

func (h *Handler) getChapter(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeValidationError(r.Context(), w, "get_chapter", err)
		return
	}

	chapter, err := h.service.GetChapter(r.Context(), number)
	if err != nil {
		writeMappedError(r.Context(), w, "get_chapter", err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.ToChapterPayload(chapter))
}

func (h *Handler) checkAnswer(w http.ResponseWriter, r *http.Request) {
	var req contracts.CheckAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "check_answer", err)
		return
	}

	res, err := h.service.CheckAnswer(r.Context(), application.CheckAnswerRequest{
		Answer:  req.Answer,
		Chapter: req.Chapter,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "check_answer", err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.CheckAnswerResponse{
		Result:    res.Result,
		Status:    res.Status,
		Chapter:   res.Chapter,
		Timestamp: res.Timestamp,
	})
}
