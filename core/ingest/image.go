package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageFetcher downloads catalog thumbnails into the media tree.
type ImageFetcher struct {
	client    *http.Client
	mediaRoot string
}

// NewImageFetcher creates an ImageFetcher writing under mediaRoot. All
// fetches share the given bounded timeout.
func NewImageFetcher(mediaRoot string, timeout time.Duration) *ImageFetcher {
	return &ImageFetcher{
		client:    &http.Client{Timeout: timeout},
		mediaRoot: mediaRoot,
	}
}

// Fetch downloads rawURL into dir (relative to the media root) under a
// random filename with a .jpg extension and returns the stored path,
// relative to the media root. An empty URL is a no-op returning "".
// Fetch only stages the file on disk; persisting the returned path onto
// a record is the caller's decision, so each call site controls when the
// attachment is saved relative to the surrounding record save.
func (f *ImageFetcher) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	if rawURL == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image fetch returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}

	filename := strings.ReplaceAll(uuid.New().String(), "-", "") + ".jpg"

	absDir := filepath.Join(f.mediaRoot, filepath.FromSlash(dir))
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory %s: %w", absDir, err)
	}
	if err := os.WriteFile(filepath.Join(absDir, filename), body, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path.Join(dir, filename), nil
}
