// Package download writes batches of creative assets and their manifest to disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/adscout/backend/internal/apperr"
)

// Fetcher streams remote assets to local files.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher whose requests time out after timeout. Zero means no limit.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads rawURL into path and returns the number of bytes written.
// The file is only created once the server answered 2xx; an existing file is truncated.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, path string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return 0, &apperr.FetchError{URL: rawURL, Path: path, Err: errors.New("only http and https URLs are supported")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &apperr.FetchError{URL: rawURL, Path: path, Err: fmt.Errorf("create request: %w", err)}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, &apperr.FetchError{URL: rawURL, Path: path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &apperr.FetchError{URL: rawURL, Path: path, Status: resp.StatusCode}
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, &apperr.FetchError{URL: rawURL, Path: path, Err: fmt.Errorf("create file: %w", err)}
	}
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		return n, &apperr.FetchError{URL: rawURL, Path: path, Err: fmt.Errorf("write file: %w", err)}
	}
	if err := out.Close(); err != nil {
		return n, &apperr.FetchError{URL: rawURL, Path: path, Err: fmt.Errorf("close file: %w", err)}
	}
	return n, nil
}
