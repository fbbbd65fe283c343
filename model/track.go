package model

import "time"

// Track represents an audio track. ExternalID is the idempotency key for
// catalog ingestion: a track is created only if no local row with that
// external id exists.
type Track struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"size:255" json:"title"`
	Order      int    `gorm:"column:track_order" json:"order"`
	Duration   int    `json:"duration"` // seconds
	ExternalID string `gorm:"size:255;index" json:"externalId"`

	AlbumID int64  `gorm:"not null;index" json:"albumId"`
	Album   *Album `json:"album,omitempty"`

	FeaturedArtists []Artist `gorm:"many2many:track_featured_artists" json:"featuredArtists,omitempty"`

	// FilePath is the audio file location relative to the media root.
	// Empty until the download worker has fetched the track.
	FilePath string `gorm:"size:500" json:"-"`

	Listens int `json:"listens"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
