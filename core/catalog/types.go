package catalog

import "strconv"

// Thumbnail is an image variant attached to a catalog entity. The catalog
// orders thumbnails by resolution: index 0 is the primary/low-res entry,
// index 1 a larger one, and the last entry is the highest resolution.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ArtistCredit is an artist reference on a track entry.
type ArtistCredit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistAlbum is an album entry embedded in an artist page.
//
// The upstream API mislabels the release year: it arrives in the `type`
// JSON field of these entries. We decode that field and expose it as a
// year, so callers never see the quirk.
type ArtistAlbum struct {
	Title      string      `json:"title"`
	BrowseID   string      `json:"browseId"`
	YearText   string      `json:"type"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// Year parses the release year, returning 0 when absent or malformed.
func (a *ArtistAlbum) Year() int {
	y, err := strconv.Atoi(a.YearText)
	if err != nil {
		return 0
	}
	return y
}

// SinglesRef points at an artist's singles listing, fetched separately
// via GetArtistAlbums.
type SinglesRef struct {
	BrowseID string `json:"browseId"`
	Params   string `json:"params"`
}

// ArtistResponse is the artist page.
type ArtistResponse struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Thumbnails  []Thumbnail `json:"thumbnails"`
	Albums      struct {
		Results []ArtistAlbum `json:"results"`
	} `json:"albums"`
	Singles SinglesRef `json:"singles"`
}

// AlbumListing is an entry in a browse listing (used for singles). Unlike
// ArtistAlbum, these entries carry a real type and a correctly labelled
// year.
type AlbumListing struct {
	Title      string      `json:"title"`
	Type       string      `json:"type"`
	BrowseID   string      `json:"browseId"`
	YearText   string      `json:"year"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// Year parses the release year, returning 0 when absent or malformed.
func (l *AlbumListing) Year() int {
	y, err := strconv.Atoi(l.YearText)
	if err != nil {
		return 0
	}
	return y
}

// AlbumTrack is a track entry on an album page.
type AlbumTrack struct {
	VideoID         string         `json:"videoId"`
	Title           string         `json:"title"`
	TrackNumber     int            `json:"trackNumber"`
	DurationSeconds int            `json:"duration_seconds"`
	Artists         []ArtistCredit `json:"artists"`
}

// AlbumResponse is the album page. TrackCount defaults to 0 when the
// catalog omits it.
type AlbumResponse struct {
	Title      string       `json:"title"`
	TrackCount int          `json:"trackCount"`
	Thumbnails []Thumbnail  `json:"thumbnails"`
	Tracks     []AlbumTrack `json:"tracks"`
}
