package repository

import (
	"testing"

	"masta/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID int64 = 7

func TestRecordAndClearHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewLibraryRepository(db)
	album := seedAlbum(t, db)

	track := &model.Track{Title: "Archangel", ExternalID: "v1", AlbumID: album.ID}
	require.NoError(t, db.Create(track).Error)

	_, err := repo.RecordPlay(testUserID, track.ID, 120)
	require.NoError(t, err)
	_, err = repo.RecordPlay(testUserID, track.ID, 238)
	require.NoError(t, err)
	_, err = repo.RecordPlay(testUserID+1, track.ID, 10)
	require.NoError(t, err)

	entries, err := repo.History(testUserID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Track)
	assert.Equal(t, "Archangel", entries[0].Track.Title)

	require.NoError(t, repo.ClearHistory(testUserID))

	entries, err = repo.History(testUserID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Other users' history survives.
	entries, err = repo.History(testUserID+1, 0, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveAlbumIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewLibraryRepository(db)
	album := seedAlbum(t, db)

	require.NoError(t, repo.SaveAlbum(testUserID, album.ID))
	require.NoError(t, repo.SaveAlbum(testUserID, album.ID))

	saved, err := repo.SavedAlbums(testUserID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].Album)
	assert.Equal(t, "Untrue", saved[0].Album.Title)

	require.NoError(t, repo.UnsaveAlbum(testUserID, album.ID))
	saved, err = repo.SavedAlbums(testUserID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestFollowArtist(t *testing.T) {
	db := newTestDB(t)
	repo := NewLibraryRepository(db)

	artist := &model.Artist{Name: "Actress", ParseTracks: true}
	require.NoError(t, db.Create(artist).Error)

	require.NoError(t, repo.FollowArtist(testUserID, artist.ID))
	require.NoError(t, repo.FollowArtist(testUserID, artist.ID))

	followed, err := repo.FollowedArtists(testUserID)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "Actress", followed[0].Artist.Name)

	require.NoError(t, repo.UnfollowArtist(testUserID, artist.ID))
	followed, err = repo.FollowedArtists(testUserID)
	require.NoError(t, err)
	assert.Empty(t, followed)
}

func TestFavoriteTrack(t *testing.T) {
	db := newTestDB(t)
	repo := NewLibraryRepository(db)
	album := seedAlbum(t, db)

	track := &model.Track{Title: "Archangel", ExternalID: "v1", AlbumID: album.ID}
	require.NoError(t, db.Create(track).Error)

	require.NoError(t, repo.FavoriteTrack(testUserID, track.ID))
	require.NoError(t, repo.FavoriteTrack(testUserID, track.ID))

	favorites, err := repo.FavoriteTracks(testUserID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Archangel", favorites[0].Track.Title)

	require.NoError(t, repo.UnfavoriteTrack(testUserID, track.ID))
	favorites, err = repo.FavoriteTracks(testUserID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}
