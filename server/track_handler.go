package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"masta/logger"
	"masta/model"
	"masta/repository"

	"github.com/gorilla/mux"
)

// ListTracksHandler returns a paginated track listing, optionally
// filtered by a title search.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	page, pageSize, offset := pageParams(r)
	search := r.URL.Query().Get("search")

	tracks, total, err := h.trackRepo.List(search, offset, pageSize)
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, paginated{
		Results:  tracks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetTrackHandler returns a single track by id.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.trackByPathID(w, r)
	if err != nil {
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// StreamTrackHandler serves the track's audio file.
func (h *APIHandler) StreamTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.trackByPathID(w, r)
	if err != nil {
		return
	}
	if track.FilePath == "" {
		http.Error(w, "Track has no audio file", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.cfg.MediaRoot, filepath.FromSlash(track.FilePath)))
}

// PlayRequest reports how long a track was played for.
type PlayRequest struct {
	PlayDuration int `json:"playDuration"`
}

// RecordPlayHandler records a play of the track for the authenticated
// user: a history row, a buffered listen count, the recently-played
// list, and a broadcast to activity subscribers.
func (h *APIHandler) RecordPlayHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	username, _ := GetUsernameFromContext(r.Context())

	track, err := h.trackByPathID(w, r)
	if err != nil {
		return
	}

	var req PlayRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	entry, err := h.libraryRepo.RecordPlay(userID, track.ID, req.PlayDuration)
	if err != nil {
		logger.Error("failed to record play", logger.Int64("trackID", track.ID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Listen counts and the recent list are best-effort; a Redis outage
	// must not fail the play.
	if h.listenCache != nil {
		if err := h.listenCache.IncrementPlay(r.Context(), track.ID); err != nil {
			logger.Warn("failed to buffer listen", logger.Int64("trackID", track.ID), logger.ErrorField(err))
		}
		if err := h.listenCache.PushRecent(r.Context(), userID, track.ID); err != nil {
			logger.Warn("failed to push recent track", logger.Int64("userID", userID), logger.ErrorField(err))
		}
	}

	if h.hub != nil {
		event := PlayEvent{
			Username:   username,
			TrackID:    track.ID,
			TrackTitle: track.Title,
			PlayedAt:   time.Now(),
		}
		if track.Album != nil && track.Album.Artist != nil {
			event.ArtistName = track.Album.Artist.Name
		}
		h.hub.Broadcast(event)
	}

	respondJSON(w, http.StatusCreated, entry)
}

// RecentTracksHandler returns the authenticated user's recently played
// tracks, newest first.
func (h *APIHandler) RecentTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if h.listenCache == nil {
		respondJSON(w, http.StatusOK, []*model.Track{})
		return
	}

	ids, err := h.listenCache.Recent(r.Context(), userID, 20)
	if err != nil {
		logger.Error("failed to load recent tracks", logger.Int64("userID", userID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	tracks := make([]*model.Track, 0, len(ids))
	for _, id := range ids {
		track, err := h.trackRepo.GetByID(id)
		if err != nil {
			continue
		}
		tracks = append(tracks, track)
	}

	respondJSON(w, http.StatusOK, tracks)
}

func (h *APIHandler) trackByPathID(w http.ResponseWriter, r *http.Request) (*model.Track, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return nil, err
	}

	track, err := h.trackRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Track not found", http.StatusNotFound)
			return nil, err
		}
		logger.Error("failed to get track", logger.Int64("trackID", id), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, err
	}
	return track, nil
}
