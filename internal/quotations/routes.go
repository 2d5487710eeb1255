package quotations

import "github.com/go-chi/chi/v5"

// MountRoutes registers the quotation routes. The caller wraps them with the
// auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats/overview", h.Stats)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/send", h.Send)
		r.Patch("/status", h.PatchStatus)
		r.Post("/convert-to-invoice", h.Convert)
		r.Get("/pdf", h.PDF)
	})
}
