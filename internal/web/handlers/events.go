package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"facereel/internal/store"
)

// EventsHandler exposes the confirmed appearance events of one person.
type EventsHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewEventsHandler(st *store.Store, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{store: st, logger: logger}
}

// VideoEvents groups one video's events in API responses.
type VideoEvents struct {
	VideoPath string        `json:"video_path"`
	Month     string        `json:"month,omitempty"`
	Date      string        `json:"date,omitempty"`
	Events    []store.Event `json:"events"`
}

// List handles GET /api/people/{name}/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	events, ok := h.store.EventsFor(name)
	if !ok {
		respondError(w, http.StatusNotFound, "person not found")
		return
	}

	videos := make([]string, 0, len(events))
	for video := range events {
		videos = append(videos, video)
	}
	sort.Strings(videos)

	out := make([]VideoEvents, 0, len(videos))
	for _, video := range videos {
		ve := VideoEvents{VideoPath: video, Events: events[video]}
		if meta, ok := h.store.Meta(video); ok {
			ve.Month, ve.Date = meta.Month, meta.Date
		}
		out = append(out, ve)
	}
	respondJSON(w, http.StatusOK, map[string]any{"person": name, "videos": out})
}

// Delete handles DELETE /api/people/{name}/events?video=...&t=..., the manual
// curation path for removing a single misdetected event.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	video := r.URL.Query().Get("video")
	if video == "" {
		respondError(w, http.StatusBadRequest, "video query parameter is required")
		return
	}
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "t query parameter must be a timestamp in seconds")
		return
	}

	if !h.store.DeleteEvent(name, video, t) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err := h.store.Save(); err != nil {
		h.logger.Error("failed to persist store", "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
