// Package tag embeds library metadata into downloaded audio files.
package tag

import (
	"fmt"
	"strconv"
	"strings"

	"masta/model"

	"go.senan.xyz/taglib"
)

// Tagger writes tags with TagLib. The zero value is ready to use.
type Tagger struct{}

// Apply sets title, album, album-artist, track-number and artist fields
// on the file at path and persists them in place. The album's artist and
// the track's featured artists must be loaded.
func (Tagger) Apply(path string, track *model.Track, album *model.Album) error {
	primary := ""
	if album.Artist != nil {
		primary = album.Artist.Name
	}

	tags := map[string][]string{
		taglib.Title:       {track.Title},
		taglib.Album:       {album.Title},
		taglib.AlbumArtist: {primary},
		taglib.TrackNumber: {strconv.Itoa(track.Order)},
		taglib.Artist:      {ArtistField(primary, track.FeaturedArtists)},
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

// ArtistField builds the artist tag value: the primary artist alone, or
// a semicolon-joined multi-artist value when the track credits more than
// one featured artist. The primary artist comes first, then the featured
// artists in listing order.
func ArtistField(primary string, featured []model.Artist) string {
	if len(featured) <= 1 {
		return primary
	}
	parts := make([]string, 0, len(featured)+1)
	parts = append(parts, primary)
	for _, artist := range featured {
		parts = append(parts, artist.Name)
	}
	return strings.Join(parts, ";")
}
