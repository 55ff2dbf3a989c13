package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"facereel/internal/enrich"
	"facereel/internal/identity"
	"facereel/internal/media"
	"facereel/internal/store"
)

// maxUploadSize bounds registration image uploads.
const maxUploadSize = 20 << 20

// PeopleHandler manages registered identities.
type PeopleHandler struct {
	registry   *identity.Registry
	store      *store.Store
	detector   media.FaceDetector
	enricher   *enrich.Service
	profileDir string
	logger     *slog.Logger
}

func NewPeopleHandler(registry *identity.Registry, st *store.Store, detector media.FaceDetector,
	enricher *enrich.Service, profileDir string, logger *slog.Logger) *PeopleHandler {
	return &PeopleHandler{
		registry:   registry,
		store:      st,
		detector:   detector,
		enricher:   enricher,
		profileDir: profileDir,
		logger:     logger,
	}
}

// PersonResponse is one registered identity in API responses.
type PersonResponse struct {
	Name       string `json:"name"`
	References int    `json:"references"`
	Events     int    `json:"events"`
}

// List handles GET /api/people.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	people := make([]PersonResponse, 0, len(names))
	for _, name := range names {
		people = append(people, PersonResponse{
			Name:       name,
			References: h.registry.References(name),
			Events:     h.store.EventCount(name),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"people": people})
}

// Register handles POST /api/people: a multipart form with a name field and a
// portrait image containing exactly one face.
func (h *PeopleHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "facereel-register-*.img")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		respondError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	tmp.Close()

	err = identity.RegisterFromImage(r.Context(), h.registry, h.detector, tmp.Name(), name, h.profileDir)
	switch {
	case errors.Is(err, identity.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, "no face found in the image")
		return
	case errors.Is(err, identity.ErrMultipleFaces):
		respondError(w, http.StatusUnprocessableEntity, "image must contain exactly one face")
		return
	case err != nil:
		h.logger.Error("registration failed", "person", sanitizeForLog(name), "error", err)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.store.EnsurePeople([]string{name})
	if err := h.store.Save(); err != nil {
		h.logger.Error("failed to persist store", "error", err)
	}

	respondJSON(w, http.StatusCreated, PersonResponse{
		Name:       name,
		References: h.registry.References(name),
		Events:     h.store.EventCount(name),
	})
}

// Delete handles DELETE /api/people/{name}. Removing an identity cascades to
// its events, profile icon and orphaned thumbnails.
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.registry.Delete(name) {
		respondError(w, http.StatusNotFound, "person not found")
		return
	}
	if err := h.registry.Save(); err != nil {
		h.logger.Error("failed to persist registry", "error", err)
	}

	h.store.PurgePerson(name)
	if err := h.store.Save(); err != nil {
		h.logger.Error("failed to persist store", "error", err)
	}

	identity.DeleteProfileIcon(h.profileDir, name)
	if err := h.enricher.PruneThumbnails(h.validThumbs()); err != nil {
		h.logger.Warn("thumbnail cleanup failed", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

// validThumbs collects the thumbnail paths still referenced by any event.
func (h *PeopleHandler) validThumbs() map[string]bool {
	valid := map[string]bool{}
	for _, person := range h.store.People() {
		events, ok := h.store.EventsFor(person)
		if !ok {
			continue
		}
		for _, list := range events {
			for _, ev := range list {
				if ev.Thumb != "" {
					valid[ev.Thumb] = true
				}
			}
		}
	}
	return valid
}

// ProfileIcon handles GET /api/people/{name}/icon.
func (h *PeopleHandler) ProfileIcon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path := filepath.Join(h.profileDir, name+".jpg")
	if filepath.Dir(path) != filepath.Clean(h.profileDir) {
		respondError(w, http.StatusBadRequest, "invalid name")
		return
	}
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "no profile icon")
		return
	}
	http.ServeFile(w, r, path)
}
