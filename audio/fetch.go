package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type (
	// Fetcher retrieves the raw encoded bytes of an asset.
	Fetcher interface {
		Fetch(ctx context.Context, assetID string) ([]byte, error)
	}

	// HTTPFetcher gets assets from BaseURL/<asset id>. A nil Client means
	// http.DefaultClient.
	HTTPFetcher struct {
		BaseURL string
		Client  *http.Client
	}

	// DirFetcher reads assets from files named by their id under Root.
	DirFetcher struct {
		Root string
	}
)

func (f *HTTPFetcher) Fetch(ctx context.Context, assetID string) ([]byte, error) {
	u := strings.TrimSuffix(f.BaseURL, "/") + "/" + url.PathEscape(assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for asset %v: %w", assetID, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get asset %v: %w", assetID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not get asset %v: %s", assetID, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read asset %v: %w", assetID, err)
	}
	return data, nil
}

func (f *DirFetcher) Fetch(ctx context.Context, assetID string) ([]byte, error) {
	if !filepath.IsLocal(assetID) {
		return nil, fmt.Errorf("asset id %q is not a local path", assetID)
	}
	data, err := os.ReadFile(filepath.Join(f.Root, assetID))
	if err != nil {
		return nil, fmt.Errorf("could not read asset %v: %w", assetID, err)
	}
	return data, nil
}
