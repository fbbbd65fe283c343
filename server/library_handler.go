package server

import (
	"net/http"
	"strconv"

	"masta/logger"

	"github.com/gorilla/mux"
)

// HistoryHandler returns the authenticated user's listening history,
// newest first.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	_, pageSize, offset := pageParams(r)
	entries, err := h.libraryRepo.History(userID, offset, pageSize)
	if err != nil {
		logger.Error("failed to load history", logger.Int64("userID", userID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// ClearHistoryHandler wipes the authenticated user's listening history.
func (h *APIHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.libraryRepo.ClearHistory(userID); err != nil {
		logger.Error("failed to clear history", logger.Int64("userID", userID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SavedAlbumsHandler returns the authenticated user's saved albums.
func (h *APIHandler) SavedAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.libraryRepo.SavedAlbums(userID)
	if err != nil {
		logger.Error("failed to load saved albums", logger.Int64("userID", userID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// SaveAlbumHandler saves an album into the user's library. Saving an
// already-saved album is a no-op.
func (h *APIHandler) SaveAlbumHandler(w http.ResponseWriter, r *http.Request) {
	h.libraryMutation(w, r, h.libraryRepo.SaveAlbum, http.StatusCreated)
}

// UnsaveAlbumHandler removes an album from the user's library.
func (h *APIHandler) UnsaveAlbumHandler(w http.ResponseWriter, r *http.Request) {
	h.libraryMutation(w, r, h.libraryRepo.UnsaveAlbum, http.StatusNoContent)
}

// FollowedArtistsHandler returns the artists the user follows.
func (h *APIHandler) FollowedArtistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.libraryRepo.FollowedArtists(userID)
	if err != nil {
		logger.Error("failed to load followed artists", logger.Int64("userID", userID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// FollowArtistHandler follows an artist. Following an already-followed
// artist is a no-op.
func (h *APIHandler) FollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	h.libraryMutation(w, r, h.libraryRepo.FollowArtist, http.StatusCreated)
}

// UnfollowArtistHandler unfollows an artist.
func (h *APIHandler) UnfollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	h.libraryMutation(w, r, h.libraryRepo.UnfollowArtist, http.StatusNoContent)
}

// FavoriteTracksHandler returns the user's favorite tracks.
func (h *APIHandler) FavoriteTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.libraryRepo.FavoriteTracks(userID)
	if err != nil {
		logger.Error("failed to load favorite tracks", logger.Int64("userID", userID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// FavoriteTrackHandler favorites a track. Favoriting twice is a no-op.
func (h *APIHandler) FavoriteTrackHandler(w http.ResponseWriter, r *http.Request) {
	h.libraryMutation(w, r, h.libraryRepo.FavoriteTrack, http.StatusCreated)
}

// UnfavoriteTrackHandler removes a track from favorites.
func (h *APIHandler) UnfavoriteTrackHandler(w http.ResponseWriter, r *http.Request) {
	h.libraryMutation(w, r, h.libraryRepo.UnfavoriteTrack, http.StatusNoContent)
}

// libraryMutation runs one of the user/entity pair operations, taking
// the entity id from the {id} path variable.
func (h *APIHandler) libraryMutation(w http.ResponseWriter, r *http.Request, op func(userID, entityID int64) error, status int) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entityID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	if err := op(userID, entityID); err != nil {
		logger.Error("library operation failed",
			logger.Int64("userID", userID),
			logger.Int64("entityID", entityID),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
}
