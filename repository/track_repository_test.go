package repository

import (
	"testing"

	"masta/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAlbum(t *testing.T, db *gorm.DB) *model.Album {
	t.Helper()
	artist := &model.Artist{Name: "Burial", ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, db.Create(artist).Error)
	album := &model.Album{Title: "Untrue", ExternalID: "MPREb_u", ArtistID: artist.ID}
	require.NoError(t, db.Create(album).Error)
	return album
}

func TestTrackGetOrCreateByExternalID(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	album := seedAlbum(t, db)

	track, created, err := repo.GetOrCreateByExternalID("v1", model.Track{
		Title:      "Archangel",
		Order:      2,
		Duration:   238,
		ExternalID: "v1",
		AlbumID:    album.ID,
	})
	require.NoError(t, err)
	assert.True(t, created)

	// A second get-or-create leaves the stored row untouched.
	again, created, err := repo.GetOrCreateByExternalID("v1", model.Track{
		Title:      "Archangel (Edit)",
		Order:      9,
		ExternalID: "v1",
		AlbumID:    album.ID,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, track.ID, again.ID)
	assert.Equal(t, "Archangel", again.Title)
	assert.Equal(t, 2, again.Order)
}

func TestAttachFeaturedArtistIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	album := seedAlbum(t, db)

	track := &model.Track{Title: "Collab", ExternalID: "v1", AlbumID: album.ID}
	require.NoError(t, db.Create(track).Error)
	guest := &model.Artist{Name: "Guest", ExternalID: "UCg", ParseTracks: false}
	require.NoError(t, db.Create(guest).Error)

	require.NoError(t, repo.AttachFeaturedArtist(track, guest))
	require.NoError(t, repo.AttachFeaturedArtist(track, guest))

	var count int64
	require.NoError(t, db.Table("track_featured_artists").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindWithoutFile(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	album := seedAlbum(t, db)

	pending := &model.Track{Title: "A", ExternalID: "v1", AlbumID: album.ID}
	done := &model.Track{Title: "B", ExternalID: "v2", AlbumID: album.ID, FilePath: "music/x.opus"}
	manual := &model.Track{Title: "C", AlbumID: album.ID} // no external id, nothing to fetch
	require.NoError(t, db.Create(pending).Error)
	require.NoError(t, db.Create(done).Error)
	require.NoError(t, db.Create(manual).Error)

	got, err := repo.FindWithoutFile()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
	require.NotNil(t, got[0].Album)
	require.NotNil(t, got[0].Album.Artist)
	assert.Equal(t, "burial", got[0].Album.Artist.Slug)
}

func TestClearFilePathByPath(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	album := seedAlbum(t, db)

	track := &model.Track{Title: "A", ExternalID: "v1", AlbumID: album.ID, FilePath: "music/burial/untrue/1-a.opus"}
	require.NoError(t, db.Create(track).Error)

	require.NoError(t, repo.ClearFilePathByPath("music/burial/untrue/1-a.opus"))

	var got model.Track
	require.NoError(t, db.First(&got, track.ID).Error)
	assert.Empty(t, got.FilePath)
}

func TestIncrementListens(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	album := seedAlbum(t, db)

	track := &model.Track{Title: "A", ExternalID: "v1", AlbumID: album.ID}
	require.NoError(t, db.Create(track).Error)

	require.NoError(t, repo.IncrementListens(track.ID, 3))
	require.NoError(t, repo.IncrementListens(track.ID, 2))

	var got model.Track
	require.NoError(t, db.First(&got, track.ID).Error)
	assert.Equal(t, 5, got.Listens)
}
