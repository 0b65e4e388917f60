package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/sync", h.TriggerSync)
		r.Get("/sync/status", h.SyncStatus)
		r.Get("/sync/runs", h.ListSyncRuns)

		r.Get("/songs", h.ListSongs)
		r.Get("/albums", h.ListAlbums)
		r.Get("/artists", h.ListArtists)

		r.Get("/preferences", h.GetPreferences)
		r.Put("/preferences", h.UpdatePreferences)
	})
}
