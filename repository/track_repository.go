package repository

import (
	"errors"
	"fmt"

	"masta/model"

	"gorm.io/gorm"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	// GetOrCreateByExternalID returns the track with the given external
	// id, inserting defaults when absent. An existing row is returned
	// unchanged; title/order/duration corrections from the catalog are
	// not re-applied after first creation.
	GetOrCreateByExternalID(externalID string, defaults model.Track) (*model.Track, bool, error)

	// AttachFeaturedArtist adds the artist to the track's featured set if
	// not already attached.
	AttachFeaturedArtist(track *model.Track, artist *model.Artist) error

	// FindWithoutFile selects tracks with no downloaded audio, with the
	// owning album, its artist and the featured artists loaded.
	FindWithoutFile() ([]*model.Track, error)

	GetByID(id int64) (*model.Track, error)
	SetFilePath(trackID int64, path string) error
	ClearFilePathByPath(path string) error
	IncrementListens(trackID int64, delta int) error
	List(search string, offset, limit int) ([]*model.Track, int64, error)
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewTrackRepository creates a TrackRepository backed by GORM.
func NewTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) GetOrCreateByExternalID(externalID string, defaults model.Track) (*model.Track, bool, error) {
	var track model.Track
	res := r.db.
		Where(&model.Track{ExternalID: externalID}).
		Attrs(&defaults).
		FirstOrCreate(&track)
	if res.Error != nil {
		return nil, false, fmt.Errorf("get-or-create track %q: %w", externalID, res.Error)
	}
	return &track, res.RowsAffected > 0, nil
}

func (r *gormTrackRepository) AttachFeaturedArtist(track *model.Track, artist *model.Artist) error {
	var count int64
	if err := r.db.Table("track_featured_artists").
		Where("track_id = ? AND artist_id = ?", track.ID, artist.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check featured artist on track %d: %w", track.ID, err)
	}
	if count > 0 {
		return nil
	}
	if err := r.db.Model(track).Association("FeaturedArtists").Append(artist); err != nil {
		return fmt.Errorf("failed to attach featured artist %d to track %d: %w", artist.ID, track.ID, err)
	}
	return nil
}

func (r *gormTrackRepository) FindWithoutFile() ([]*model.Track, error) {
	var tracks []*model.Track
	if err := r.db.
		Preload("Album").
		Preload("Album.Artist").
		Preload("FeaturedArtists").
		Where("file_path = '' AND external_id <> ''").
		Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to select tracks without file: %w", err)
	}
	return tracks, nil
}

func (r *gormTrackRepository) GetByID(id int64) (*model.Track, error) {
	var track model.Track
	err := r.db.
		Preload("Album").
		Preload("Album.Artist").
		Preload("FeaturedArtists").
		First(&track, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get track %d: %w", id, err)
	}
	return &track, nil
}

func (r *gormTrackRepository) SetFilePath(trackID int64, path string) error {
	if err := r.db.Model(&model.Track{}).
		Where("id = ?", trackID).
		Update("file_path", path).Error; err != nil {
		return fmt.Errorf("failed to set file path for track %d: %w", trackID, err)
	}
	return nil
}

func (r *gormTrackRepository) ClearFilePathByPath(path string) error {
	if err := r.db.Model(&model.Track{}).
		Where("file_path = ?", path).
		Update("file_path", "").Error; err != nil {
		return fmt.Errorf("failed to clear file path %q: %w", path, err)
	}
	return nil
}

func (r *gormTrackRepository) IncrementListens(trackID int64, delta int) error {
	if err := r.db.Model(&model.Track{}).
		Where("id = ?", trackID).
		Update("listens", gorm.Expr("listens + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to increment listens for track %d: %w", trackID, err)
	}
	return nil
}

func (r *gormTrackRepository) List(search string, offset, limit int) ([]*model.Track, int64, error) {
	q := r.db.Model(&model.Track{}).Preload("Album").Preload("Album.Artist")
	if search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	var tracks []*model.Track
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&tracks).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, total, nil
}
