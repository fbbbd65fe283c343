// Package library watches the on-disk media tree.
package library

import (
	"context"
	"os"
	"path/filepath"

	"masta/logger"
	"masta/repository"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the media tree and clears a track's stored file path
// when its audio file disappears, so the next download run re-fetches
// it.
type Watcher struct {
	tracks    repository.TrackRepository
	mediaRoot string
	watcher   *fsnotify.Watcher
}

// NewWatcher creates a Watcher over mediaRoot.
func NewWatcher(tracks repository.TrackRepository, mediaRoot string) *Watcher {
	return &Watcher{tracks: tracks, mediaRoot: mediaRoot}
}

// Start begins watching. It registers the music tree recursively and
// returns after spawning the event loop; cancel ctx to stop.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	musicRoot := filepath.Join(w.mediaRoot, "music")
	if err := os.MkdirAll(musicRoot, 0755); err != nil {
		watcher.Close()
		return err
	}

	err = filepath.Walk(musicRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("media watcher error", logger.ErrorField(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		rel, err := filepath.Rel(w.mediaRoot, event.Name)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)
		if err := w.tracks.ClearFilePathByPath(rel); err != nil {
			logger.Warn("failed to clear file path for removed file",
				logger.String("path", rel),
				logger.ErrorField(err))
		}
		return
	}

	// New subdirectories must be registered to keep the watch recursive.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				logger.Warn("failed to watch new directory",
					logger.String("path", event.Name),
					logger.ErrorField(err))
			}
		}
	}
}
