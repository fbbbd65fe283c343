// Package fetch wraps yt-dlp for audio download and metadata probing.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"masta/core/catalog"
)

// Fetcher downloads audio via yt-dlp with an audio-extraction
// post-process step, writing into a shared temp directory keyed by
// external id. Callers delete the returned file after consuming it.
type Fetcher struct {
	ytdlpPath  string
	ffmpegPath string
	tempDir    string

	fragmentRetries int
	retries         int
}

// NewFetcher creates a Fetcher.
func NewFetcher(ytdlpPath, ffmpegPath, tempDir string, fragmentRetries, retries int) *Fetcher {
	return &Fetcher{
		ytdlpPath:       ytdlpPath,
		ffmpegPath:      ffmpegPath,
		tempDir:         tempDir,
		fragmentRetries: fragmentRetries,
		retries:         retries,
	}
}

// downloadArgs builds the yt-dlp invocation for one external id.
func (f *Fetcher) downloadArgs(externalID string) []string {
	return []string{
		"-f", "bestaudio",
		"--no-playlist",
		"--fragment-retries", strconv.Itoa(f.fragmentRetries),
		"--retries", strconv.Itoa(f.retries),
		"-x",
		"--audio-quality", "5",
		"--ffmpeg-location", f.ffmpegPath,
		"-o", filepath.Join(f.tempDir, "%(id)s.%(ext)s"),
		"--no-simulate",
		"--print", "after_move:filepath",
		"--", externalID,
	}
}

// Download fetches the best available audio stream for externalID and
// extracts it to an audio container, returning the local file path.
func (f *Fetcher) Download(ctx context.Context, externalID string) (string, error) {
	if err := os.MkdirAll(f.tempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory %s: %w", f.tempDir, err)
	}

	cmd := exec.CommandContext(ctx, f.ytdlpPath, f.downloadArgs(externalID)...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed for %s: %w\n%s", externalID, err, stderr.String())
	}

	// yt-dlp prints the post-processed file path last.
	path := lastLine(out.String())
	if path == "" {
		return "", fmt.Errorf("yt-dlp produced no file path for %s", externalID)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("downloaded file missing for %s: %w", externalID, err)
	}
	return path, nil
}

// ProbeThumbnails runs yt-dlp in metadata-only mode and returns the
// thumbnails listed for mediaURL, without downloading anything.
func (f *Fetcher) ProbeThumbnails(ctx context.Context, mediaURL string) ([]catalog.Thumbnail, error) {
	cmd := exec.CommandContext(ctx, f.ytdlpPath, "-J", "--no-warnings", "--", mediaURL)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed for %s: %w\n%s", mediaURL, err, stderr.String())
	}

	thumbs, err := parseThumbnails(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse probe output for %s: %w", mediaURL, err)
	}
	return thumbs, nil
}

func parseThumbnails(raw []byte) ([]catalog.Thumbnail, error) {
	var info struct {
		Thumbnails []catalog.Thumbnail `json:"thumbnails"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	return info.Thumbnails, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
