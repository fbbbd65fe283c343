package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestGetArtist(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/artists/UCabc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		// Artist-page album entries carry the release year in the "type"
		// field; the client exposes it via Year().
		w.Write([]byte(`{
			"name": "Boards of Canada",
			"description": "Scottish electronic duo.",
			"thumbnails": [
				{"url": "https://img/small.jpg", "width": 100, "height": 100},
				{"url": "https://img/banner.jpg", "width": 1600, "height": 400}
			],
			"albums": {
				"results": [
					{"title": "Geogaddi", "browseId": "MPREb_1", "type": "2002",
					 "thumbnails": [{"url": "https://img/g1.jpg"}, {"url": "https://img/g2.jpg"}]}
				]
			},
			"singles": {"browseId": "MPLAb_9", "params": "ggMIegYIARoCAQI"}
		}`))
	})

	artist, err := client.GetArtist(context.Background(), "UCabc")
	require.NoError(t, err)

	assert.Equal(t, "Boards of Canada", artist.Name)
	assert.Equal(t, "Scottish electronic duo.", artist.Description)
	require.Len(t, artist.Thumbnails, 2)
	assert.Equal(t, "https://img/banner.jpg", artist.Thumbnails[1].URL)

	require.Len(t, artist.Albums.Results, 1)
	assert.Equal(t, "Geogaddi", artist.Albums.Results[0].Title)
	assert.Equal(t, 2002, artist.Albums.Results[0].Year())

	assert.Equal(t, "MPLAb_9", artist.Singles.BrowseID)
	assert.Equal(t, "ggMIegYIARoCAQI", artist.Singles.Params)
}

func TestGetArtistAlbums(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/artists/MPLAb_9/albums", r.URL.Path)
		assert.Equal(t, "tok en", r.URL.Query().Get("params"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"title": "Odd Nosdam Remix", "type": "Single", "browseId": "MPREb_2",
			 "year": "2019", "thumbnails": [{"url": "https://img/s.jpg"}]}
		]`))
	})

	listings, err := client.GetArtistAlbums(context.Background(), "MPLAb_9", "tok en")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Single", listings[0].Type)
	assert.Equal(t, 2019, listings[0].Year())
}

func TestGetAlbum(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/albums/MPREb_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"title": "Geogaddi",
			"trackCount": 2,
			"thumbnails": [{"url": "https://img/lo.jpg"}, {"url": "https://img/hi.jpg"}],
			"tracks": [
				{"videoId": "v1", "title": "Music Is Math", "trackNumber": 2,
				 "duration_seconds": 325,
				 "artists": [{"id": "UCabc", "name": "Boards of Canada"}]},
				{"videoId": "v2", "title": "Gyroscope", "trackNumber": 3,
				 "duration_seconds": 215, "artists": []}
			]
		}`))
	})

	album, err := client.GetAlbum(context.Background(), "MPREb_1")
	require.NoError(t, err)
	assert.Equal(t, 2, album.TrackCount)
	require.Len(t, album.Tracks, 2)
	assert.Equal(t, 325, album.Tracks[0].DurationSeconds)
	assert.Equal(t, "UCabc", album.Tracks[0].Artists[0].ID)
}

func TestErrorResponseWithDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "artist not found"}`))
	})

	_, err := client.GetArtist(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artist not found")
	assert.Contains(t, err.Error(), "404")
}

func TestErrorResponseWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetArtist(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestYearMalformed(t *testing.T) {
	a := ArtistAlbum{YearText: "Album"}
	assert.Equal(t, 0, a.Year())

	l := AlbumListing{YearText: ""}
	assert.Equal(t, 0, l.Year())
}
