package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"masta/logger"
	"masta/model"
	"masta/repository"

	"golang.org/x/time/rate"
)

// MediaFetcher downloads a track's audio by external id, returning a
// local temporary file path. The caller owns the temp file.
type MediaFetcher interface {
	Download(ctx context.Context, externalID string) (string, error)
}

// Tagger embeds track metadata into an audio file in place.
type Tagger interface {
	Apply(path string, track *model.Track, album *model.Album) error
}

// Archiver mirrors finished audio files into object storage.
type Archiver interface {
	Archive(ctx context.Context, objectName, filePath string) error
}

// Downloader fetches audio for tracks missing a file, tags it and moves
// it into the media tree. One track at a time, paced by the limiter to
// avoid upstream rate limiting.
type Downloader struct {
	tracks   repository.TrackRepository
	fetcher  MediaFetcher
	tagger   Tagger
	archiver Archiver // nil when archiving is disabled

	limiter   *rate.Limiter
	mediaRoot string
}

// NewDownloader wires a Downloader. delay is the pause between
// successive downloads.
func NewDownloader(tracks repository.TrackRepository, fetcher MediaFetcher, tagger Tagger, archiver Archiver, mediaRoot string, delay rate.Limit) *Downloader {
	return &Downloader{
		tracks:    tracks,
		fetcher:   fetcher,
		tagger:    tagger,
		archiver:  archiver,
		limiter:   rate.NewLimiter(delay, 1),
		mediaRoot: mediaRoot,
	}
}

// Run downloads every track with an empty file path. A failure on one
// track is logged and the batch continues; interrupted runs resume
// because completed tracks no longer match the selection filter.
func (dl *Downloader) Run(ctx context.Context) error {
	tracks, err := dl.tracks.FindWithoutFile()
	if err != nil {
		return err
	}
	logger.Info("found tracks with missing file", logger.Int("count", len(tracks)))

	for _, track := range tracks {
		if err := dl.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := dl.downloadOne(ctx, track); err != nil {
			logger.Warn("track download failed, skipping",
				logger.Int64("trackId", track.ID),
				logger.String("externalId", track.ExternalID),
				logger.ErrorField(err))
		}
	}
	return nil
}

func (dl *Downloader) downloadOne(ctx context.Context, track *model.Track) error {
	tmp, err := dl.fetcher.Download(ctx, track.ExternalID)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := dl.tagger.Apply(tmp, track, track.Album); err != nil {
		return err
	}

	rel := track.AudioPath(track.Album, filepath.Ext(tmp))
	abs := filepath.Join(dl.mediaRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("failed to create album directory: %w", err)
	}
	if err := moveFile(tmp, abs); err != nil {
		return err
	}

	if err := dl.tracks.SetFilePath(track.ID, rel); err != nil {
		return err
	}

	if dl.archiver != nil {
		if err := dl.archiver.Archive(ctx, rel, abs); err != nil {
			logger.Warn("archive upload failed",
				logger.Int64("trackId", track.ID),
				logger.ErrorField(err))
		}
	}

	logger.Info("track downloaded",
		logger.Int64("trackId", track.ID),
		logger.String("path", rel))
	return nil
}

// moveFile renames src to dst, falling back to copy+remove when the
// paths are on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return os.Remove(src)
}
