package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"masta/core/catalog"
	"masta/model"
	"masta/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Genre{},
		&model.Artist{},
		&model.Album{},
		&model.Track{},
	))
	return db
}

type fakeCatalog struct {
	artists  map[string]*catalog.ArtistResponse
	albums   map[string]*catalog.AlbumResponse
	listings map[string][]catalog.AlbumListing
}

func (f *fakeCatalog) GetArtist(ctx context.Context, externalID string) (*catalog.ArtistResponse, error) {
	if a, ok := f.artists[externalID]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("catalog API error: status 404")
}

func (f *fakeCatalog) GetArtistAlbums(ctx context.Context, browseID, params string) ([]catalog.AlbumListing, error) {
	if l, ok := f.listings[browseID]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("catalog API error: status 404")
}

func (f *fakeCatalog) GetAlbum(ctx context.Context, externalID string) (*catalog.AlbumResponse, error) {
	if a, ok := f.albums[externalID]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("catalog API error: status 404")
}

type fakeProber struct {
	thumbs map[string][]catalog.Thumbnail
	urls   []string
}

func (f *fakeProber) ProbeThumbnails(ctx context.Context, mediaURL string) ([]catalog.Thumbnail, error) {
	f.urls = append(f.urls, mediaURL)
	if thumbs, ok := f.thumbs[mediaURL]; ok {
		return thumbs, nil
	}
	return nil, fmt.Errorf("probe failed for %s", mediaURL)
}

type driverFixture struct {
	db      *gorm.DB
	artists repository.ArtistRepository
	albums  repository.AlbumRepository
	tracks  repository.TrackRepository
	catalog *fakeCatalog
	prober  *fakeProber
	driver  *Driver
	imgSrv  *httptest.Server
}

func newDriverFixture(t *testing.T) *driverFixture {
	t.Helper()

	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	t.Cleanup(imgSrv.Close)

	db := newTestDB(t)
	f := &driverFixture{
		db:      db,
		artists: repository.NewArtistRepository(db),
		albums:  repository.NewAlbumRepository(db),
		tracks:  repository.NewTrackRepository(db),
		catalog: &fakeCatalog{
			artists:  map[string]*catalog.ArtistResponse{},
			albums:   map[string]*catalog.AlbumResponse{},
			listings: map[string][]catalog.AlbumListing{},
		},
		prober: &fakeProber{thumbs: map[string][]catalog.Thumbnail{}},
		imgSrv: imgSrv,
	}
	f.driver = NewDriver(
		f.artists, f.albums, f.tracks,
		f.catalog, f.prober,
		NewImageFetcher(t.TempDir(), 5*time.Second),
		NewNFOWriter(t.TempDir()),
		"https://www.youtube.com/channel/",
	)
	return f
}

func (f *driverFixture) imgURL(name string) string {
	return f.imgSrv.URL + "/" + name
}

func TestPassesSelection(t *testing.T) {
	f := newDriverFixture(t)

	names := func(opts Options) []string {
		var out []string
		for _, p := range f.driver.Passes(opts) {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Empty(t, names(Options{}))
	assert.Equal(t, []string{"artist-enrichment"}, names(Options{Name: true}))
	assert.Equal(t, []string{"artist-enrichment"}, names(Options{Banner: true, Albums: true}))
	assert.Equal(t, []string{"profile-pictures"}, names(Options{ProfilePics: true}))
	assert.Equal(t,
		[]string{"artist-enrichment", "profile-pictures", "track-discovery"},
		names(Options{Name: true, ProfilePics: true, Tracks: true}))
}

func TestEnrichArtistsUpdatesNameAndBio(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name:        "Burial",
		Description: "South London producer.",
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true}))

	var got model.Artist
	require.NoError(t, f.db.First(&got, artist.ID).Error)
	assert.Equal(t, "Burial", got.Name)
	assert.Equal(t, "South London producer.", got.Bio)
	// The slug was assigned at creation (from the external id, the name
	// being blank) and is never rewritten.
	assert.Equal(t, "uc1", got.Slug)
}

func TestEnrichArtistsSkipsFetchFailures(t *testing.T) {
	f := newDriverFixture(t)

	missing := &model.Artist{ExternalID: "UCmissing", ParseTracks: true}
	present := &model.Artist{ExternalID: "UCok", ParseTracks: true}
	require.NoError(t, f.db.Create(missing).Error)
	require.NoError(t, f.db.Create(present).Error)

	f.catalog.artists["UCok"] = &catalog.ArtistResponse{Name: "Actress"}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true}))

	var got model.Artist
	require.NoError(t, f.db.First(&got, present.ID).Error)
	assert.Equal(t, "Actress", got.Name)
}

func TestBannerUsesSecondThumbnail(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name: "Burial",
		Thumbnails: []catalog.Thumbnail{
			{URL: f.imgURL("small.jpg")},
			{URL: f.imgURL("banner.jpg")},
			{URL: f.imgURL("huge.jpg")},
		},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Banner: true}))

	var got model.Artist
	require.NoError(t, f.db.First(&got, artist.ID).Error)
	assert.NotEmpty(t, got.BannerPath)
}

func TestBannerSkippedWithSingleThumbnail(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name:       "Burial",
		Thumbnails: []catalog.Thumbnail{{URL: f.imgURL("only.jpg")}},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Banner: true}))

	var got model.Artist
	require.NoError(t, f.db.First(&got, artist.ID).Error)
	assert.Empty(t, got.BannerPath)
}

func TestBannerNotRefetchedWhenSet(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{ExternalID: "UC1", BannerPath: "music/x/existing.jpg", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name: "Burial",
		Thumbnails: []catalog.Thumbnail{
			{URL: f.imgURL("a.jpg")},
			{URL: f.imgURL("b.jpg")},
		},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true}))

	var got model.Artist
	require.NoError(t, f.db.First(&got, artist.ID).Error)
	assert.Equal(t, "music/x/existing.jpg", got.BannerPath)
}

func TestParseTracksStubSkipsAlbumDiscovery(t *testing.T) {
	f := newDriverFixture(t)

	// A featured-artist stub: enrichment refreshes its name but must not
	// walk its discography.
	artist := &model.Artist{ExternalID: "UCstub", ParseTracks: false}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UCstub"] = &catalog.ArtistResponse{
		Name: "Horace Andy",
		Albums: struct {
			Results []catalog.ArtistAlbum `json:"results"`
		}{
			Results: []catalog.ArtistAlbum{
				{Title: "Skylarking", BrowseID: "MPREb_sky", YearText: "1972"},
			},
		},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true}))

	var got model.Artist
	require.NoError(t, f.db.First(&got, artist.ID).Error)
	assert.Equal(t, "Horace Andy", got.Name)

	var count int64
	require.NoError(t, f.db.Model(&model.Album{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAlbumDiscoveryDedupesByExternalID(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{Name: "Boards of Canada", ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name: "Boards of Canada",
		Albums: struct {
			Results []catalog.ArtistAlbum `json:"results"`
		}{
			Results: []catalog.ArtistAlbum{
				{Title: "Geogaddi", BrowseID: "MPREb_1", YearText: "2002",
					Thumbnails: []catalog.Thumbnail{
						{URL: f.imgURL("lo.jpg")},
						{URL: f.imgURL("hi.jpg")},
					}},
			},
		},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Albums: true}))
	// Second run must not duplicate.
	f.db.Model(&model.Artist{}).Where("id = ?", artist.ID).Update("banner_path", "")
	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Banner: true}))

	var albums []model.Album
	require.NoError(t, f.db.Find(&albums).Error)
	require.Len(t, albums, 1)

	assert.Equal(t, "Geogaddi", albums[0].Title)
	assert.Equal(t, model.AlbumTypeAlbum, albums[0].AlbumType)
	assert.NotEmpty(t, albums[0].CoverPath)
	require.NotNil(t, albums[0].ReleaseDate)
	assert.Equal(t, 2002, albums[0].ReleaseDate.Year())
	assert.Equal(t, time.January, albums[0].ReleaseDate.Month())
}

func TestSinglesFetchedOnlyWithTracksFlag(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name:    "Burial",
		Singles: catalog.SinglesRef{BrowseID: "MPLAb_9", Params: "tok"},
	}
	f.catalog.listings["MPLAb_9"] = []catalog.AlbumListing{
		{Title: "Rodent", Type: "Single", BrowseID: "MPREb_rod", YearText: "2017"},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true}))

	var count int64
	require.NoError(t, f.db.Model(&model.Album{}).Count(&count).Error)
	assert.Zero(t, count, "singles must not be fetched without the tracks option")

	// Blank the name again so the selection filter picks the artist up.
	require.NoError(t, f.db.Model(&model.Artist{}).Where("id = ?", artist.ID).
		Update("name", "").Error)
	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true, Tracks: true}))

	var single model.Album
	require.NoError(t, f.db.Where("external_id = ?", "MPREb_rod").First(&single).Error)
	assert.Equal(t, model.AlbumTypeSingle, single.AlbumType)
}

func TestSinglesFetchFailureIsNonFatal(t *testing.T) {
	f := newDriverFixture(t)

	artist := &model.Artist{ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)

	// Singles browse id present but no listing registered: the fake
	// returns an error, which must not abort the run.
	f.catalog.artists["UC1"] = &catalog.ArtistResponse{
		Name:    "Burial",
		Singles: catalog.SinglesRef{BrowseID: "MPLAb_gone"},
	}

	require.NoError(t, f.driver.EnrichArtists(context.Background(), Options{Name: true, Tracks: true}))
}

func TestFetchProfilePictures(t *testing.T) {
	f := newDriverFixture(t)

	bare := &model.Artist{Name: "Burial", ExternalID: "UCbare", ParseTracks: true}
	full := &model.Artist{Name: "Actress", ExternalID: "https://example.com/actress", ParseTracks: true}
	already := &model.Artist{Name: "Zomby", ExternalID: "UCz", ProfilePicturePath: "music/z/pp.jpg", ParseTracks: true}
	require.NoError(t, f.db.Create(bare).Error)
	require.NoError(t, f.db.Create(full).Error)
	require.NoError(t, f.db.Create(already).Error)

	f.prober.thumbs["https://www.youtube.com/channel/UCbare"] = []catalog.Thumbnail{
		{URL: f.imgURL("pp.jpg")},
		{URL: f.imgURL("pp-big.jpg")},
	}
	f.prober.thumbs["https://example.com/actress"] = []catalog.Thumbnail{
		{URL: f.imgURL("a.jpg")},
	}

	require.NoError(t, f.driver.FetchProfilePictures(context.Background()))

	// Bare external ids get the channel URL prefix; full URLs pass
	// through untouched.
	assert.Contains(t, f.prober.urls, "https://www.youtube.com/channel/UCbare")
	assert.Contains(t, f.prober.urls, "https://example.com/actress")
	assert.NotContains(t, f.prober.urls, "https://www.youtube.com/channel/UCz")

	var got model.Artist
	require.NoError(t, f.db.First(&got, bare.ID).Error)
	assert.NotEmpty(t, got.ProfilePicturePath)

	got = model.Artist{}
	require.NoError(t, f.db.First(&got, already.ID).Error)
	assert.Equal(t, "music/z/pp.jpg", got.ProfilePicturePath)
}

func TestFetchProfilePicturesSkipsProbeFailures(t *testing.T) {
	f := newDriverFixture(t)

	broken := &model.Artist{Name: "A", ExternalID: "UCbroken", ParseTracks: true}
	ok := &model.Artist{Name: "B", ExternalID: "UCok", ParseTracks: true}
	require.NoError(t, f.db.Create(broken).Error)
	require.NoError(t, f.db.Create(ok).Error)

	f.prober.thumbs["https://www.youtube.com/channel/UCok"] = []catalog.Thumbnail{
		{URL: f.imgURL("ok.jpg")},
	}

	require.NoError(t, f.driver.FetchProfilePictures(context.Background()))

	var got model.Artist
	require.NoError(t, f.db.First(&got, ok.ID).Error)
	assert.NotEmpty(t, got.ProfilePicturePath)
}

func seedAlbum(t *testing.T, f *driverFixture) (*model.Artist, *model.Album) {
	t.Helper()
	artist := &model.Artist{Name: "Boards of Canada", ExternalID: "UC1", ParseTracks: true}
	require.NoError(t, f.db.Create(artist).Error)
	album := &model.Album{Title: "Geogaddi", ExternalID: "MPREb_1", ArtistID: artist.ID}
	require.NoError(t, f.db.Create(album).Error)
	return artist, album
}

func TestDiscoverTracksCreatesTracks(t *testing.T) {
	f := newDriverFixture(t)
	_, album := seedAlbum(t, f)

	f.catalog.albums["MPREb_1"] = &catalog.AlbumResponse{
		Title:      "Geogaddi",
		TrackCount: 2,
		Tracks: []catalog.AlbumTrack{
			{VideoID: "v1", Title: "Music Is Math", TrackNumber: 2, DurationSeconds: 325},
			{VideoID: "v2", Title: "Gyroscope", TrackNumber: 3, DurationSeconds: 215},
		},
	}

	require.NoError(t, f.driver.DiscoverTracks(context.Background()))

	var tracks []model.Track
	require.NoError(t, f.db.Order("track_order").Find(&tracks).Error)
	require.Len(t, tracks, 2)
	assert.Equal(t, "Music Is Math", tracks[0].Title)
	assert.Equal(t, 2, tracks[0].Order)
	assert.Equal(t, 325, tracks[0].Duration)
	assert.Equal(t, album.ID, tracks[0].AlbumID)
}

func TestDiscoverTracksRefreshesAlbumButNotTracks(t *testing.T) {
	f := newDriverFixture(t)
	seedAlbum(t, f)

	f.catalog.albums["MPREb_1"] = &catalog.AlbumResponse{
		Title:      "Geogaddi",
		TrackCount: 1,
		Tracks: []catalog.AlbumTrack{
			{VideoID: "v1", Title: "Music Is Math", TrackNumber: 2, DurationSeconds: 325},
		},
	}
	require.NoError(t, f.driver.DiscoverTracks(context.Background()))

	// Clear the local track set indicator by deleting the track so the
	// album is selected again, then change what the catalog reports.
	require.NoError(t, f.db.Model(&model.Track{}).Where("external_id = ?", "v1").
		Update("album_id", 0).Error)
	f.catalog.albums["MPREb_1"] = &catalog.AlbumResponse{
		Title:      "Geogaddi (Remaster)",
		TrackCount: 1,
		Tracks: []catalog.AlbumTrack{
			{VideoID: "v1", Title: "Music Is Math (Remaster)", TrackNumber: 9, DurationSeconds: 1},
		},
	}
	require.NoError(t, f.driver.DiscoverTracks(context.Background()))

	// Album-level fields refresh on every run.
	var album model.Album
	require.NoError(t, f.db.Where("external_id = ?", "MPREb_1").First(&album).Error)
	assert.Equal(t, "Geogaddi (Remaster)", album.Title)

	// Track rows are created once and never overwritten.
	var track model.Track
	require.NoError(t, f.db.Where("external_id = ?", "v1").First(&track).Error)
	assert.Equal(t, "Music Is Math", track.Title)
	assert.Equal(t, 2, track.Order)
	assert.Equal(t, 325, track.Duration)
}

func TestDiscoverTracksSkipsAlbumsWithTracks(t *testing.T) {
	f := newDriverFixture(t)
	_, album := seedAlbum(t, f)
	require.NoError(t, f.db.Create(&model.Track{Title: "Existing", AlbumID: album.ID, ExternalID: "v0"}).Error)

	// No catalog entry: a fetch attempt would mark the album as fetched
	// in the fake; instead the album must not be selected at all.
	require.NoError(t, f.driver.DiscoverTracks(context.Background()))

	var got model.Album
	require.NoError(t, f.db.First(&got, album.ID).Error)
	assert.Equal(t, "Geogaddi", got.Title)
}

func TestDiscoverTracksFeaturedArtists(t *testing.T) {
	f := newDriverFixture(t)
	seedAlbum(t, f)

	f.catalog.albums["MPREb_1"] = &catalog.AlbumResponse{
		Title: "Geogaddi",
		Tracks: []catalog.AlbumTrack{
			{VideoID: "v1", Title: "Collab", TrackNumber: 1, Artists: []catalog.ArtistCredit{
				{ID: "UC1", Name: "Boards of Canada"}, // primary, skipped
				{ID: "UCfeat", Name: "Guest"},
				{ID: "", Name: "Uncredited"}, // no id, skipped
			}},
		},
	}

	require.NoError(t, f.driver.DiscoverTracks(context.Background()))

	var featured model.Artist
	require.NoError(t, f.db.Where("external_id = ?", "UCfeat").First(&featured).Error)
	assert.Equal(t, "Guest", featured.Name)
	assert.False(t, featured.ParseTracks, "featured-artist stubs must not recurse")

	var track model.Track
	require.NoError(t, f.db.Preload("FeaturedArtists").Where("external_id = ?", "v1").First(&track).Error)
	require.Len(t, track.FeaturedArtists, 1)
	assert.Equal(t, "Guest", track.FeaturedArtists[0].Name)

	var count int64
	require.NoError(t, f.db.Model(&model.Artist{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "no artist row for the uncredited entry")
}

func TestDiscoverTracksFeaturedArtistIdempotent(t *testing.T) {
	f := newDriverFixture(t)
	seedAlbum(t, f)

	f.catalog.albums["MPREb_1"] = &catalog.AlbumResponse{
		Title: "Geogaddi",
		Tracks: []catalog.AlbumTrack{
			{VideoID: "v1", Title: "Collab", TrackNumber: 1, Artists: []catalog.ArtistCredit{
				{ID: "UCfeat", Name: "Guest"},
			}},
		},
	}

	require.NoError(t, f.driver.DiscoverTracks(context.Background()))
	require.NoError(t, f.db.Model(&model.Track{}).Where("external_id = ?", "v1").
		Update("album_id", 0).Error)
	require.NoError(t, f.driver.DiscoverTracks(context.Background()))

	var count int64
	require.NoError(t, f.db.Table("track_featured_artists").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestNormalizeAlbumType(t *testing.T) {
	assert.Equal(t, model.AlbumTypeAlbum, normalizeAlbumType(""))
	assert.Equal(t, model.AlbumTypeAlbum, normalizeAlbumType("Album"))
	assert.Equal(t, model.AlbumTypeSingle, normalizeAlbumType("Single"))
	assert.Equal(t, model.AlbumTypeEP, normalizeAlbumType("EP"))
	assert.Equal(t, model.AlbumTypeAlbum, normalizeAlbumType("Compilation"))
}
