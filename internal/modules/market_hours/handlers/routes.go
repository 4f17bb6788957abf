package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all region routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/regions", func(r chi.Router) {
		r.Get("/", h.HandleGetRegions)
		r.Get("/open", h.HandleGetOpenRegions)
		r.Get("/stream", h.HandleStream)
		r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetRegion(w, r, chi.URLParam(r, "name"))
		})
	})
}
