package repository

import (
	"errors"
	"fmt"

	"masta/model"

	"gorm.io/gorm"
)

// ArtistRepository defines the interface for artist data operations.
type ArtistRepository interface {
	// FindForEnrichment selects artists needing catalog enrichment. The
	// three filters combine with AND when more than one is set: nameBlank
	// matches artists with an empty name, bannerBlank an empty banner, and
	// noAlbums artists with no albums that still have ParseTracks set.
	FindForEnrichment(nameBlank, bannerBlank, noAlbums bool) ([]*model.Artist, error)
	FindWithoutProfilePicture() ([]*model.Artist, error)

	// GetOrCreateByExternalID returns the artist with the given external
	// id, inserting defaults when absent. An existing row is returned
	// unchanged. The boolean reports whether a row was created.
	GetOrCreateByExternalID(externalID string, defaults model.Artist) (*model.Artist, bool, error)

	Save(artist *model.Artist) error
	GetBySlug(slug string) (*model.Artist, error)
	List(search string, offset, limit int) ([]*model.Artist, int64, error)
}

type gormArtistRepository struct {
	db *gorm.DB
}

// NewArtistRepository creates an ArtistRepository backed by GORM.
func NewArtistRepository(db *gorm.DB) ArtistRepository {
	return &gormArtistRepository{db: db}
}

func (r *gormArtistRepository) FindForEnrichment(nameBlank, bannerBlank, noAlbums bool) ([]*model.Artist, error) {
	q := r.db.Model(&model.Artist{}).Preload("Genres")
	if nameBlank {
		q = q.Where("name = ''")
	}
	if bannerBlank {
		q = q.Where("banner_path = ''")
	}
	if noAlbums {
		q = q.Where("parse_tracks = ? AND NOT EXISTS (SELECT 1 FROM albums WHERE albums.artist_id = artists.id)", true)
	}

	var artists []*model.Artist
	if err := q.Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("failed to select artists for enrichment: %w", err)
	}
	return artists, nil
}

func (r *gormArtistRepository) FindWithoutProfilePicture() ([]*model.Artist, error) {
	var artists []*model.Artist
	if err := r.db.
		Where("profile_picture_path = '' AND external_id <> ''").
		Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("failed to select artists without profile picture: %w", err)
	}
	return artists, nil
}

func (r *gormArtistRepository) GetOrCreateByExternalID(externalID string, defaults model.Artist) (*model.Artist, bool, error) {
	var artist model.Artist
	res := r.db.
		Where(&model.Artist{ExternalID: externalID}).
		Attrs(&defaults).
		FirstOrCreate(&artist)
	if res.Error != nil {
		return nil, false, fmt.Errorf("get-or-create artist %q: %w", externalID, res.Error)
	}
	return &artist, res.RowsAffected > 0, nil
}

func (r *gormArtistRepository) Save(artist *model.Artist) error {
	if err := r.db.Save(artist).Error; err != nil {
		return fmt.Errorf("failed to save artist %d: %w", artist.ID, err)
	}
	return nil
}

func (r *gormArtistRepository) GetBySlug(slug string) (*model.Artist, error) {
	var artist model.Artist
	err := r.db.
		Preload("Genres").
		Preload("Albums").
		Where("slug = ?", slug).
		First(&artist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get artist by slug %q: %w", slug, err)
	}
	return &artist, nil
}

func (r *gormArtistRepository) List(search string, offset, limit int) ([]*model.Artist, int64, error) {
	q := r.db.Model(&model.Artist{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count artists: %w", err)
	}

	var artists []*model.Artist
	if err := q.Order("name").Offset(offset).Limit(limit).Find(&artists).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list artists: %w", err)
	}
	return artists, total, nil
}
