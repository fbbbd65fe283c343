package server

import (
	"net/http"

	"masta/logger"
	"masta/model"
)

// SearchResponse groups matches across the catalog aggregates.
type SearchResponse struct {
	Artists []*model.Artist `json:"artists"`
	Albums  []*model.Album  `json:"albums"`
	Tracks  []*model.Track  `json:"tracks"`
}

const searchLimit = 10

// SearchHandler searches artists, albums and tracks by name/title.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	artists, _, err := h.artistRepo.List(query, 0, searchLimit)
	if err != nil {
		logger.Error("search artists failed", logger.String("query", query), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	albums, _, err := h.albumRepo.List(query, 0, searchLimit)
	if err != nil {
		logger.Error("search albums failed", logger.String("query", query), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	tracks, _, err := h.trackRepo.List(query, 0, searchLimit)
	if err != nil {
		logger.Error("search tracks failed", logger.String("query", query), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, SearchResponse{
		Artists: artists,
		Albums:  albums,
		Tracks:  tracks,
	})
}
