package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer srv.Close()

	root := t.TempDir()
	fetcher := NewImageFetcher(root, 5*time.Second)

	stored, err := fetcher.Fetch(context.Background(), srv.URL+"/banner.jpg", "music/burial")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored, "music/burial/"), "stored path %q", stored)
	assert.True(t, strings.HasSuffix(stored, ".jpg"))

	name := filepath.Base(stored)
	assert.Len(t, name, 36) // 32 hex chars plus ".jpg"

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(stored)))
	require.NoError(t, err)
	assert.Equal(t, "fake-jpeg-bytes", string(data))
}

func TestImageFetcherEmptyURL(t *testing.T) {
	fetcher := NewImageFetcher(t.TempDir(), time.Second)

	stored, err := fetcher.Fetch(context.Background(), "", "music/burial")
	require.NoError(t, err)
	assert.Equal(t, "", stored)
}

func TestImageFetcherUniqueNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	fetcher := NewImageFetcher(t.TempDir(), time.Second)

	first, err := fetcher.Fetch(context.Background(), srv.URL, "music/a")
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), srv.URL, "music/a")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestImageFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewImageFetcher(t.TempDir(), time.Second)

	_, err := fetcher.Fetch(context.Background(), srv.URL, "music/a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
