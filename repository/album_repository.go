package repository

import (
	"errors"
	"fmt"

	"masta/model"

	"gorm.io/gorm"
)

// AlbumRepository defines the interface for album data operations.
type AlbumRepository interface {
	ExistsByExternalID(externalID string) (bool, error)
	Create(album *model.Album) error
	Save(album *model.Album) error

	// FindWithoutTracks selects albums with zero local tracks, with the
	// owning artist loaded.
	FindWithoutTracks() ([]*model.Album, error)

	GetBySlug(slug string) (*model.Album, error)
	List(search string, offset, limit int) ([]*model.Album, int64, error)
}

type gormAlbumRepository struct {
	db *gorm.DB
}

// NewAlbumRepository creates an AlbumRepository backed by GORM.
func NewAlbumRepository(db *gorm.DB) AlbumRepository {
	return &gormAlbumRepository{db: db}
}

func (r *gormAlbumRepository) ExistsByExternalID(externalID string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Album{}).
		Where("external_id = ?", externalID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check album %q: %w", externalID, err)
	}
	return count > 0, nil
}

func (r *gormAlbumRepository) Create(album *model.Album) error {
	if err := r.db.Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album %q: %w", album.Title, err)
	}
	return nil
}

func (r *gormAlbumRepository) Save(album *model.Album) error {
	if err := r.db.Save(album).Error; err != nil {
		return fmt.Errorf("failed to save album %d: %w", album.ID, err)
	}
	return nil
}

func (r *gormAlbumRepository) FindWithoutTracks() ([]*model.Album, error) {
	var albums []*model.Album
	if err := r.db.
		Preload("Artist").
		Where("NOT EXISTS (SELECT 1 FROM tracks WHERE tracks.album_id = albums.id)").
		Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to select albums without tracks: %w", err)
	}
	return albums, nil
}

func (r *gormAlbumRepository) GetBySlug(slug string) (*model.Album, error) {
	var album model.Album
	err := r.db.
		Preload("Artist").
		Preload("Tracks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tracks.track_order")
		}).
		Preload("Tracks.FeaturedArtists").
		Where("slug = ?", slug).
		First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get album by slug %q: %w", slug, err)
	}
	return &album, nil
}

func (r *gormAlbumRepository) List(search string, offset, limit int) ([]*model.Album, int64, error) {
	q := r.db.Model(&model.Album{}).Preload("Artist")
	if search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count albums: %w", err)
	}

	var albums []*model.Album
	if err := q.Order("release_date DESC").Offset(offset).Limit(limit).Find(&albums).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, total, nil
}
