package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"facereel/internal/config"
	"facereel/internal/store"
	"facereel/internal/story"
)

// StoryHandler generates highlight playlists on demand.
type StoryHandler struct {
	store  *store.Store
	tuning config.Tuning
	logger *slog.Logger
}

func NewStoryHandler(st *store.Store, tuning config.Tuning, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{store: st, tuning: tuning, logger: logger}
}

type storyRequest struct {
	Person string `json:"person"`
	Period string `json:"period"` // "All Time", "2006-01" or "2006"
	Focus  string `json:"focus"`
	Seed   int64  `json:"seed"` // 0 = random
}

// Generate handles POST /api/story.
func (h *StoryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Person == "" {
		respondError(w, http.StatusBadRequest, "person is required")
		return
	}
	focus, err := story.ParseFocus(req.Focus)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	engine := story.NewEngine(h.store, h.tuning, req.Seed, h.logger)
	playlist, err := engine.Generate(req.Person, req.Period, focus)
	if errors.Is(err, story.ErrNoData) {
		respondError(w, http.StatusNotFound, "no appearance data for this person and period")
		return
	}
	if err != nil {
		h.logger.Error("playlist generation failed", "person", sanitizeForLog(req.Person), "error", err)
		respondError(w, http.StatusInternalServerError, "playlist generation failed")
		return
	}

	respondJSON(w, http.StatusOK, playlist)
}
