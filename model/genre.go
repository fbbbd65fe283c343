package model

// Genre is a music genre, attached to artists many-to-many. The catalog
// reconciliation pipeline does not mutate genres; they only feed the NFO
// export and the browse API.
type Genre struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:255;uniqueIndex" json:"name"`
	ThumbnailPath string `gorm:"size:500" json:"thumbnailPath"`
}
