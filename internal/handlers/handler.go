// Package handlers exposes the JSON API: trigger and observe syncs, browse
// the library, and edit sync preferences.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avilaroman/cadenza/internal/domain"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/store"
	syncsvc "github.com/avilaroman/cadenza/internal/sync"
)

const defaultPageSize = 100

type Handler struct {
	sync     *syncsvc.Service
	db       *store.DB
	settings *store.SettingsRepo
	log      *logger.Logger
}

func NewHandler(sync *syncsvc.Service, db *store.DB, settings *store.SettingsRepo, log *logger.Logger) *Handler {
	return &Handler{
		sync:     sync,
		db:       db,
		settings: settings,
		log:      log.WithComponent("http"),
	}
}

func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Trigger(); err != nil {
		if errors.Is(err, syncsvc.ErrAlreadyRunning) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		// the only other Trigger failure is an unreadable preferences store
		h.serverError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	run, running := h.sync.Status()
	h.writeJSON(w, map[string]any{
		"running": running,
		"run":     run,
	})
}

func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.db.ListSyncRuns(r.Context(), pageSize(r))
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, runs)
}

func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.db.ListSongs(r.Context(), pageSize(r), offset(r))
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, songs)
}

func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.db.ListAlbums(r.Context(), pageSize(r), offset(r))
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, albums)
}

func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.db.ListArtists(r.Context(), pageSize(r), offset(r))
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, artists)
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.settings.Preferences()
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, preferencesDTO(prefs))
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var dto prefsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs := domain.Preferences{
		BlockedDirs: dto.BlockedDirs,
		AllowedDirs: dto.AllowedDirs,
		DeepScan:    dto.DeepScan,
	}
	if err := h.settings.SetPreferences(prefs); err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, preferencesDTO(prefs))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

type prefsDTO struct {
	BlockedDirs []string `json:"blocked_directories"`
	AllowedDirs []string `json:"allowed_directories"`
	DeepScan    bool     `json:"deep_scan"`
}

func preferencesDTO(prefs domain.Preferences) prefsDTO {
	return prefsDTO{
		BlockedDirs: prefs.BlockedDirs,
		AllowedDirs: prefs.AllowedDirs,
		DeepScan:    prefs.DeepScan,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.log.Error("request failed", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func pageSize(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 1000 {
		return v
	}
	return defaultPageSize
}

func offset(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		return v
	}
	return 0
}
