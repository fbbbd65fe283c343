// Package catalog wraps the external music-catalog API (a ytmusicapi
// compatible proxy) behind typed responses.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is an HTTP client for the catalog proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("catalog API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("catalog API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetArtist fetches an artist page by external id.
func (c *Client) GetArtist(ctx context.Context, externalID string) (*ArtistResponse, error) {
	var artist ArtistResponse
	endpoint := fmt.Sprintf("/api/artists/%s", url.PathEscape(externalID))
	if err := c.doRequest(ctx, endpoint, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// GetArtistAlbums fetches a browse listing of albums (the singles
// collection) by browse id and params token.
func (c *Client) GetArtistAlbums(ctx context.Context, browseID, params string) ([]AlbumListing, error) {
	var listings []AlbumListing
	endpoint := fmt.Sprintf("/api/artists/%s/albums?params=%s",
		url.PathEscape(browseID), url.QueryEscape(params))
	if err := c.doRequest(ctx, endpoint, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetAlbum fetches an album page by external id.
func (c *Client) GetAlbum(ctx context.Context, externalID string) (*AlbumResponse, error) {
	var album AlbumResponse
	endpoint := fmt.Sprintf("/api/albums/%s", url.PathEscape(externalID))
	if err := c.doRequest(ctx, endpoint, &album); err != nil {
		return nil, err
	}
	return &album, nil
}
