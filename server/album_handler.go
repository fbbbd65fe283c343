package server

import (
	"errors"
	"net/http"

	"masta/logger"
	"masta/repository"

	"github.com/gorilla/mux"
)

// ListAlbumsHandler returns a paginated album listing, optionally
// filtered by a title search.
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	page, pageSize, offset := pageParams(r)
	search := r.URL.Query().Get("search")

	albums, total, err := h.albumRepo.List(search, offset, pageSize)
	if err != nil {
		logger.Error("failed to list albums", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, paginated{
		Results:  albums,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetAlbumHandler returns a single album by slug, with its tracks in
// album order and their featured artists loaded.
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	album, err := h.albumRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Album not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get album", logger.String("slug", slug), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, album)
}
