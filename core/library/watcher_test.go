package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"masta/model"
	"masta/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestWatcherClearsFilePathOnRemove(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Genre{}, &model.Artist{}, &model.Album{}, &model.Track{}))

	root := t.TempDir()
	audioDir := filepath.Join(root, "music", "burial", "untrue")
	require.NoError(t, os.MkdirAll(audioDir, 0755))
	audioFile := filepath.Join(audioDir, "2-archangel.opus")
	require.NoError(t, os.WriteFile(audioFile, []byte("x"), 0644))

	artist := &model.Artist{Name: "Burial", ParseTracks: true}
	require.NoError(t, db.Create(artist).Error)
	album := &model.Album{Title: "Untrue", ArtistID: artist.ID}
	require.NoError(t, db.Create(album).Error)
	track := &model.Track{
		Title:      "Archangel",
		ExternalID: "v1",
		AlbumID:    album.ID,
		FilePath:   "music/burial/untrue/2-archangel.opus",
	}
	require.NoError(t, db.Create(track).Error)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracks := repository.NewTrackRepository(db)
	watcher := NewWatcher(tracks, root)
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.Remove(audioFile))

	require.Eventually(t, func() bool {
		var got model.Track
		if err := db.First(&got, track.ID).Error; err != nil {
			return false
		}
		return got.FilePath == ""
	}, 3*time.Second, 50*time.Millisecond, "file path should be cleared after removal")
}
