package model

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Artist represents a music artist. Artists are created either by local
// registration or on first encounter in the external catalog; catalog
// reconciliation fills in the missing fields later.
type Artist struct {
	ID                 int64   `gorm:"primaryKey" json:"id"`
	Name               string  `gorm:"size:255" json:"name"`
	Bio                string  `gorm:"type:text" json:"bio"`
	Slug               string  `gorm:"size:255;uniqueIndex" json:"slug"`
	ExternalID         string  `gorm:"size:255;index" json:"externalId"`
	ProfilePicturePath string  `gorm:"size:500" json:"profilePicturePath"`
	BannerPath         string  `gorm:"size:500" json:"bannerPath"`
	Followers          int     `json:"followers"`
	MonthlyListeners   int     `json:"monthlyListeners"`
	Verified           bool    `json:"verified"`
	Genres             []Genre `gorm:"many2many:artist_genres" json:"genres,omitempty"`
	Albums             []Album `json:"albums,omitempty"`

	// ParseTracks controls whether catalog reconciliation recurses into
	// this artist's own album/track discovery. False for artists that
	// exist only as featured-artist credits.
	ParseTracks bool `gorm:"default:true" json:"parseTracks"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeSave assigns the slug once, on the first save that has something
// to derive it from. An assigned slug is never changed.
func (a *Artist) BeforeSave(tx *gorm.DB) error {
	if a.Slug != "" {
		return nil
	}
	base := slug.Make(a.Name)
	if base == "" {
		base = slug.Make(a.ExternalID)
	}
	if base == "" {
		return nil
	}
	unique, err := uniqueSlug(tx, "artists", base, a.ID)
	if err != nil {
		return err
	}
	a.Slug = unique
	return nil
}

// uniqueSlug suffixes base with a counter until no other row in table
// carries it.
func uniqueSlug(tx *gorm.DB, table, base string, selfID int64) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := tx.Table(table).
			Where("slug = ? AND id <> ?", candidate, selfID).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("checking slug uniqueness for %q: %w", candidate, err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
