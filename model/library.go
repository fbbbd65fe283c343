package model

import "time"

// ListeningHistory records a single play of a track by a user.
type ListeningHistory struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;index:idx_history_user" json:"userId"`
	TrackID      int64     `gorm:"not null;index" json:"trackId"`
	Track        *Track    `json:"track,omitempty"`
	PlayedAt     time.Time `gorm:"autoCreateTime;index:idx_history_user" json:"playedAt"`
	PlayDuration int       `json:"playDuration"` // seconds actually played
}

// SavedAlbum is an album saved to a user's library.
type SavedAlbum struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_saved_album" json:"userId"`
	AlbumID   int64     `gorm:"not null;uniqueIndex:idx_saved_album" json:"albumId"`
	Album     *Album    `json:"album,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FollowedArtist is an artist followed by a user.
type FollowedArtist struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_followed_artist" json:"userId"`
	ArtistID  int64     `gorm:"not null;uniqueIndex:idx_followed_artist" json:"artistId"`
	Artist    *Artist   `json:"artist,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FavoriteTrack is a track liked by a user.
type FavoriteTrack struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_favorite_track" json:"userId"`
	TrackID   int64     `gorm:"not null;uniqueIndex:idx_favorite_track" json:"trackId"`
	Track     *Track    `json:"track,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
