package repository

import (
	"fmt"

	"masta/model"

	"gorm.io/gorm"
)

// LibraryRepository covers the per-user library: listening history, saved
// albums, followed artists and favorite tracks.
type LibraryRepository interface {
	RecordPlay(userID, trackID int64, playDuration int) (*model.ListeningHistory, error)
	History(userID int64, offset, limit int) ([]*model.ListeningHistory, error)
	ClearHistory(userID int64) error

	SaveAlbum(userID, albumID int64) error
	UnsaveAlbum(userID, albumID int64) error
	SavedAlbums(userID int64) ([]*model.SavedAlbum, error)

	FollowArtist(userID, artistID int64) error
	UnfollowArtist(userID, artistID int64) error
	FollowedArtists(userID int64) ([]*model.FollowedArtist, error)

	FavoriteTrack(userID, trackID int64) error
	UnfavoriteTrack(userID, trackID int64) error
	FavoriteTracks(userID int64) ([]*model.FavoriteTrack, error)
}

type gormLibraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository creates a LibraryRepository backed by GORM.
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &gormLibraryRepository{db: db}
}

func (r *gormLibraryRepository) RecordPlay(userID, trackID int64, playDuration int) (*model.ListeningHistory, error) {
	entry := &model.ListeningHistory{
		UserID:       userID,
		TrackID:      trackID,
		PlayDuration: playDuration,
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record play of track %d: %w", trackID, err)
	}
	return entry, nil
}

func (r *gormLibraryRepository) History(userID int64, offset, limit int) ([]*model.ListeningHistory, error) {
	var entries []*model.ListeningHistory
	if err := r.db.
		Preload("Track").
		Preload("Track.Album").
		Preload("Track.Album.Artist").
		Where("user_id = ?", userID).
		Order("played_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load history for user %d: %w", userID, err)
	}
	return entries, nil
}

func (r *gormLibraryRepository) ClearHistory(userID int64) error {
	if err := r.db.
		Where("user_id = ?", userID).
		Delete(&model.ListeningHistory{}).Error; err != nil {
		return fmt.Errorf("failed to clear history for user %d: %w", userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) SaveAlbum(userID, albumID int64) error {
	entry := model.SavedAlbum{UserID: userID, AlbumID: albumID}
	if err := r.db.
		Where(&entry).
		FirstOrCreate(&model.SavedAlbum{}).Error; err != nil {
		return fmt.Errorf("failed to save album %d for user %d: %w", albumID, userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) UnsaveAlbum(userID, albumID int64) error {
	if err := r.db.
		Where("user_id = ? AND album_id = ?", userID, albumID).
		Delete(&model.SavedAlbum{}).Error; err != nil {
		return fmt.Errorf("failed to unsave album %d for user %d: %w", albumID, userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) SavedAlbums(userID int64) ([]*model.SavedAlbum, error) {
	var entries []*model.SavedAlbum
	if err := r.db.
		Preload("Album").
		Preload("Album.Artist").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load saved albums for user %d: %w", userID, err)
	}
	return entries, nil
}

func (r *gormLibraryRepository) FollowArtist(userID, artistID int64) error {
	entry := model.FollowedArtist{UserID: userID, ArtistID: artistID}
	if err := r.db.
		Where(&entry).
		FirstOrCreate(&model.FollowedArtist{}).Error; err != nil {
		return fmt.Errorf("failed to follow artist %d for user %d: %w", artistID, userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) UnfollowArtist(userID, artistID int64) error {
	if err := r.db.
		Where("user_id = ? AND artist_id = ?", userID, artistID).
		Delete(&model.FollowedArtist{}).Error; err != nil {
		return fmt.Errorf("failed to unfollow artist %d for user %d: %w", artistID, userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) FollowedArtists(userID int64) ([]*model.FollowedArtist, error) {
	var entries []*model.FollowedArtist
	if err := r.db.
		Preload("Artist").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load followed artists for user %d: %w", userID, err)
	}
	return entries, nil
}

func (r *gormLibraryRepository) FavoriteTrack(userID, trackID int64) error {
	entry := model.FavoriteTrack{UserID: userID, TrackID: trackID}
	if err := r.db.
		Where(&entry).
		FirstOrCreate(&model.FavoriteTrack{}).Error; err != nil {
		return fmt.Errorf("failed to favorite track %d for user %d: %w", trackID, userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) UnfavoriteTrack(userID, trackID int64) error {
	if err := r.db.
		Where("user_id = ? AND track_id = ?", userID, trackID).
		Delete(&model.FavoriteTrack{}).Error; err != nil {
		return fmt.Errorf("failed to unfavorite track %d for user %d: %w", trackID, userID, err)
	}
	return nil
}

func (r *gormLibraryRepository) FavoriteTracks(userID int64) ([]*model.FavoriteTrack, error) {
	var entries []*model.FavoriteTrack
	if err := r.db.
		Preload("Track").
		Preload("Track.Album").
		Preload("Track.Album.Artist").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorite tracks for user %d: %w", userID, err)
	}
	return entries, nil
}
