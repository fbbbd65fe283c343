package model

import (
	"fmt"
	"path"

	"github.com/gosimple/slug"
)

// Media-tree layout. All paths are relative to the media root and use
// forward slashes; they double as URL paths under /media/.

const musicDir = "music"

// DirPath is the artist's directory in the media tree.
func (a *Artist) DirPath() string {
	return path.Join(musicDir, a.Slug)
}

// NFOPath is the location of the artist's NFO sidecar file.
func (a *Artist) NFOPath() string {
	return path.Join(a.DirPath(), "artist.nfo")
}

// DirPath is the album's directory in the media tree. The owning artist
// must be loaded.
func (al *Album) DirPath() string {
	return path.Join(musicDir, al.Artist.Slug, al.Slug)
}

// AudioPath is where the track's audio file lives once downloaded, given
// the source file extension (with leading dot). The album and its artist
// must be loaded.
func (t *Track) AudioPath(al *Album, ext string) string {
	name := fmt.Sprintf("%d-%s%s", t.Order, slug.Make(t.Title), ext)
	return path.Join(al.DirPath(), name)
}
