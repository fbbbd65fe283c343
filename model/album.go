package model

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Album types as reported by the catalog.
const (
	AlbumTypeAlbum  = "album"
	AlbumTypeSingle = "single"
	AlbumTypeEP     = "ep"
)

// Album represents an album owned by exactly one artist.
type Album struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255" json:"title"`
	Slug        string     `gorm:"size:255;index" json:"slug"`
	ExternalID  string     `gorm:"size:255;index" json:"externalId"`
	ReleaseDate *time.Time `json:"releaseDate"`
	AlbumType   string     `gorm:"size:10;default:album" json:"albumType"`
	CoverPath   string     `gorm:"size:500" json:"coverPath"`

	// TrackCount is refreshed from the catalog on every track-discovery
	// run, not computed from local rows.
	TrackCount int `json:"trackCount"`

	ArtistID int64   `gorm:"not null;index" json:"artistId"`
	Artist   *Artist `json:"artist,omitempty"`
	Tracks   []Track `json:"tracks,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeSave assigns the slug once from the title.
func (al *Album) BeforeSave(tx *gorm.DB) error {
	if al.Slug != "" {
		return nil
	}
	base := slug.Make(al.Title)
	if base == "" {
		return nil
	}
	unique, err := uniqueSlug(tx, "albums", base, al.ID)
	if err != nil {
		return err
	}
	al.Slug = unique
	return nil
}
