package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the authenticated API routes on r. Callers apply
// the auth middleware to r first.
func RegisterRoutes(r chi.Router, items *ItemHandler, sessions *SessionHandler, progress *ProgressHandler) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", items.CreateItem)
		r.Get("/", items.ListItems)
		r.Get("/due", items.DueItems)
		r.Get("/{id}", items.GetItem)
		r.Post("/{id}/archive", items.ArchiveItem)
		r.Post("/{id}/unarchive", items.UnarchiveItem)
		r.Post("/{id}/review", items.SubmitReview)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessions.StartSession)
		r.Get("/current", sessions.CurrentSession)
		r.Post("/current/complete", sessions.CompleteCurrent)
		r.Post("/current/advance", sessions.AdvanceSession)
	})

	r.Get("/progress", progress.GetProgress)
}
