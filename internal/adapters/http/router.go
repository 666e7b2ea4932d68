package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the exam platform HTTP routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(noCacheMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Post("/verify", handler.verify)
	r.Post("/login", handler.login)
	r.Get("/chapter/{number}", handler.getChapter)
	r.Post("/check-answer", handler.checkAnswer)

	r.Post("/admin/login", handler.adminLogin)
	r.Post("/admin/check-token", handler.adminCheckToken)
	r.Group(func(r chi.Router) {
		r.Use(handler.adminAuthMiddleware)
		r.Post("/admin/add-user", handler.adminAddUser)
		r.Post("/admin/update-chapter", handler.adminUpdateChapter)
		r.Get("/admin/chapters", handler.adminListChapters)
		r.Delete("/admin/delete-chapter/{number}", handler.adminDeleteChapter)
	})

	return r
}
