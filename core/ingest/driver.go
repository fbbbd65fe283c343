// Package ingest reconciles the local music library against the external
// catalog: artist enrichment, album/track discovery, image and NFO side
// effects, and audio download.
package ingest

import (
	"context"
	"strings"
	"time"

	"masta/core/catalog"
	"masta/logger"
	"masta/model"
	"masta/repository"
)

// CatalogClient is the subset of the catalog API the driver depends on.
// It is injected so tests can substitute fakes.
type CatalogClient interface {
	GetArtist(ctx context.Context, externalID string) (*catalog.ArtistResponse, error)
	GetArtistAlbums(ctx context.Context, browseID, params string) ([]catalog.AlbumListing, error)
	GetAlbum(ctx context.Context, externalID string) (*catalog.AlbumResponse, error)
}

// MediaProber resolves thumbnails for a media URL without downloading.
type MediaProber interface {
	ProbeThumbnails(ctx context.Context, mediaURL string) ([]catalog.Thumbnail, error)
}

// Options selects which reconciliation passes run. Name, Banner and
// Albums combine into a single artist-enrichment pass whose selection
// filter ANDs the set flags; ProfilePics and Tracks are independent
// sweeps.
type Options struct {
	Name        bool
	Banner      bool
	Albums      bool
	ProfilePics bool
	Tracks      bool
}

// Driver walks local rows lacking enrichment and brings them up to date
// from the external catalog. Execution is sequential and single-writer;
// per-unit catalog failures are logged and skipped, storage and
// filesystem failures abort the run.
type Driver struct {
	artists repository.ArtistRepository
	albums  repository.AlbumRepository
	tracks  repository.TrackRepository

	catalog CatalogClient
	prober  MediaProber
	images  *ImageFetcher
	nfo     *NFOWriter

	channelURLPrefix string
}

// NewDriver wires a reconciliation driver from its capabilities.
func NewDriver(
	artists repository.ArtistRepository,
	albums repository.AlbumRepository,
	tracks repository.TrackRepository,
	catalogClient CatalogClient,
	prober MediaProber,
	images *ImageFetcher,
	nfo *NFOWriter,
	channelURLPrefix string,
) *Driver {
	return &Driver{
		artists:          artists,
		albums:           albums,
		tracks:           tracks,
		catalog:          catalogClient,
		prober:           prober,
		images:           images,
		nfo:              nfo,
		channelURLPrefix: channelURLPrefix,
	}
}

// Pass is an independently invokable reconciliation sweep.
type Pass struct {
	Name string
	Run  func(ctx context.Context) error
}

// Passes returns the passes selected by opts, in execution order.
func (d *Driver) Passes(opts Options) []Pass {
	var passes []Pass
	if opts.Name || opts.Banner || opts.Albums {
		passes = append(passes, Pass{
			Name: "artist-enrichment",
			Run:  func(ctx context.Context) error { return d.EnrichArtists(ctx, opts) },
		})
	}
	if opts.ProfilePics {
		passes = append(passes, Pass{Name: "profile-pictures", Run: d.FetchProfilePictures})
	}
	if opts.Tracks {
		passes = append(passes, Pass{Name: "track-discovery", Run: d.DiscoverTracks})
	}
	return passes
}

// Run executes the selected passes sequentially.
func (d *Driver) Run(ctx context.Context, opts Options) error {
	for _, pass := range d.Passes(opts) {
		logger.Info("starting reconciliation pass", logger.String("pass", pass.Name))
		if err := pass.Run(ctx); err != nil {
			return err
		}
		logger.Info("finished reconciliation pass", logger.String("pass", pass.Name))
	}
	return nil
}

// EnrichArtists updates name/bio/banner from the catalog for artists
// matching the selection filter, rewrites NFO sidecars, and discovers
// albums for artists with ParseTracks set.
func (d *Driver) EnrichArtists(ctx context.Context, opts Options) error {
	artists, err := d.artists.FindForEnrichment(opts.Name, opts.Banner, opts.Albums)
	if err != nil {
		return err
	}
	logger.Info("selected artists for enrichment", logger.Int("count", len(artists)))

	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return err
		}

		meta, err := d.catalog.GetArtist(ctx, artist.ExternalID)
		if err != nil {
			logger.Warn("artist fetch failed, skipping",
				logger.String("externalId", artist.ExternalID),
				logger.ErrorField(err))
			continue
		}

		if err := d.applyArtistMetadata(ctx, artist, meta, opts); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) applyArtistMetadata(ctx context.Context, artist *model.Artist, meta *catalog.ArtistResponse, opts Options) error {
	artist.Name = meta.Name
	artist.Bio = meta.Description
	if err := d.artists.Save(artist); err != nil {
		return err
	}

	// The sidecar is rewritten unconditionally, even when the fetch
	// changed nothing.
	if err := d.nfo.Write(artist); err != nil {
		return err
	}

	// Index 1 is the larger banner variant by catalog convention.
	if artist.BannerPath == "" && len(meta.Thumbnails) > 1 {
		stored, err := d.images.Fetch(ctx, meta.Thumbnails[1].URL, artist.DirPath())
		if err != nil {
			logger.Warn("banner fetch failed",
				logger.Int64("artistId", artist.ID),
				logger.ErrorField(err))
		} else if stored != "" {
			artist.BannerPath = stored
			if err := d.artists.Save(artist); err != nil {
				return err
			}
		}
	}

	if !artist.ParseTracks {
		// Featured-artist stub; never recurse into its own discography.
		return nil
	}

	for _, entry := range meta.Albums.Results {
		if err := d.createAlbumIfMissing(ctx, artist, entry.BrowseID, entry.Title, "", entry.Year(), entry.Thumbnails); err != nil {
			return err
		}
	}

	if meta.Singles.BrowseID != "" && opts.Tracks {
		listings, err := d.catalog.GetArtistAlbums(ctx, meta.Singles.BrowseID, meta.Singles.Params)
		if err != nil {
			logger.Warn("singles fetch failed, skipping",
				logger.Int64("artistId", artist.ID),
				logger.ErrorField(err))
			return nil
		}
		for _, listing := range listings {
			if err := d.createAlbumIfMissing(ctx, artist, listing.BrowseID, listing.Title, listing.Type, listing.Year(), listing.Thumbnails); err != nil {
				return err
			}
		}
	}

	return nil
}

// createAlbumIfMissing inserts an album discovered in a catalog listing
// unless one with the same external id already exists.
func (d *Driver) createAlbumIfMissing(ctx context.Context, artist *model.Artist, externalID, title, albumType string, year int, thumbnails []catalog.Thumbnail) error {
	exists, err := d.albums.ExistsByExternalID(externalID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	album := &model.Album{
		Title:      title,
		ExternalID: externalID,
		ArtistID:   artist.ID,
		AlbumType:  normalizeAlbumType(albumType),
	}
	if year > 0 {
		releaseDate := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		album.ReleaseDate = &releaseDate
	}
	if err := d.albums.Create(album); err != nil {
		return err
	}
	album.Artist = artist

	// Last thumbnail entry is the highest resolution by convention.
	if len(thumbnails) > 0 {
		stored, err := d.images.Fetch(ctx, thumbnails[len(thumbnails)-1].URL, album.DirPath())
		if err != nil {
			logger.Warn("cover fetch failed",
				logger.Int64("albumId", album.ID),
				logger.ErrorField(err))
		} else if stored != "" {
			album.CoverPath = stored
			if err := d.albums.Save(album); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalizeAlbumType(raw string) string {
	switch strings.ToLower(raw) {
	case model.AlbumTypeSingle:
		return model.AlbumTypeSingle
	case model.AlbumTypeEP:
		return model.AlbumTypeEP
	default:
		return model.AlbumTypeAlbum
	}
}

// FetchProfilePictures attaches a profile picture to artists lacking
// one, resolved via the media prober's metadata-only mode.
func (d *Driver) FetchProfilePictures(ctx context.Context) error {
	artists, err := d.artists.FindWithoutProfilePicture()
	if err != nil {
		return err
	}
	logger.Info("selected artists for profile pictures", logger.Int("count", len(artists)))

	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return err
		}

		channelURL := artist.ExternalID
		if !strings.HasPrefix(channelURL, "http") {
			channelURL = d.channelURLPrefix + channelURL
		}

		thumbs, err := d.prober.ProbeThumbnails(ctx, channelURL)
		if err != nil {
			logger.Warn("thumbnail probe failed, skipping",
				logger.String("externalId", artist.ExternalID),
				logger.ErrorField(err))
			continue
		}
		if len(thumbs) == 0 {
			continue
		}

		stored, err := d.images.Fetch(ctx, thumbs[0].URL, artist.DirPath())
		if err != nil {
			logger.Warn("profile picture fetch failed",
				logger.Int64("artistId", artist.ID),
				logger.ErrorField(err))
			continue
		}
		if stored != "" {
			artist.ProfilePicturePath = stored
			if err := d.artists.Save(artist); err != nil {
				return err
			}
		}
	}
	return nil
}

// DiscoverTracks refreshes album metadata and creates missing tracks for
// albums with zero local tracks. Album-level fields are refreshed on
// every run; track rows are created once and never overwritten.
func (d *Driver) DiscoverTracks(ctx context.Context) error {
	albums, err := d.albums.FindWithoutTracks()
	if err != nil {
		return err
	}
	logger.Info("selected albums for track discovery", logger.Int("count", len(albums)))

	for _, album := range albums {
		if err := ctx.Err(); err != nil {
			return err
		}

		meta, err := d.catalog.GetAlbum(ctx, album.ExternalID)
		if err != nil {
			logger.Warn("album fetch failed, skipping",
				logger.String("externalId", album.ExternalID),
				logger.ErrorField(err))
			continue
		}

		if err := d.applyAlbumMetadata(ctx, album, meta); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) applyAlbumMetadata(ctx context.Context, album *model.Album, meta *catalog.AlbumResponse) error {
	album.Title = meta.Title
	album.TrackCount = meta.TrackCount

	if album.CoverPath == "" && len(meta.Thumbnails) > 0 {
		stored, err := d.images.Fetch(ctx, meta.Thumbnails[len(meta.Thumbnails)-1].URL, album.DirPath())
		if err != nil {
			logger.Warn("cover fetch failed",
				logger.Int64("albumId", album.ID),
				logger.ErrorField(err))
		} else if stored != "" {
			album.CoverPath = stored
		}
	}

	if err := d.albums.Save(album); err != nil {
		return err
	}

	primaryName := ""
	if album.Artist != nil {
		primaryName = album.Artist.Name
	}

	for _, entry := range meta.Tracks {
		track, _, err := d.tracks.GetOrCreateByExternalID(entry.VideoID, model.Track{
			Title:      entry.Title,
			Order:      entry.TrackNumber,
			Duration:   entry.DurationSeconds,
			ExternalID: entry.VideoID,
			AlbumID:    album.ID,
		})
		if err != nil {
			return err
		}

		for _, credit := range entry.Artists {
			if credit.ID == "" || credit.Name == primaryName {
				continue
			}
			featured, _, err := d.artists.GetOrCreateByExternalID(credit.ID, model.Artist{
				Name:       credit.Name,
				ExternalID: credit.ID,
				// Featured-artist stubs never recurse into their own
				// album/track discovery.
				ParseTracks: false,
			})
			if err != nil {
				return err
			}
			if err := d.tracks.AttachFeaturedArtist(track, featured); err != nil {
				return err
			}
		}
	}
	return nil
}
