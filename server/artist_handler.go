package server

import (
	"errors"
	"net/http"

	"masta/logger"
	"masta/repository"

	"github.com/gorilla/mux"
)

// ListArtistsHandler returns a paginated artist listing, optionally
// filtered by a name search.
func (h *APIHandler) ListArtistsHandler(w http.ResponseWriter, r *http.Request) {
	page, pageSize, offset := pageParams(r)
	search := r.URL.Query().Get("search")

	artists, total, err := h.artistRepo.List(search, offset, pageSize)
	if err != nil {
		logger.Error("failed to list artists", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, paginated{
		Results:  artists,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetArtistHandler returns a single artist by slug, with genres and
// albums loaded.
func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	artist, err := h.artistRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Artist not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get artist", logger.String("slug", slug), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, artist)
}

// ListGenresHandler returns all genres.
func (h *APIHandler) ListGenresHandler(w http.ResponseWriter, r *http.Request) {
	genres, err := h.genreRepo.List()
	if err != nil {
		logger.Error("failed to list genres", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, genres)
}
