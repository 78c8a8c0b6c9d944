package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flowchartsman/retry"
)

// maxAssetBytes bounds a single downloaded certificate or ID card.
const maxAssetBytes = 20 << 20

type File struct {
	Data        []byte
	ContentType string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (File, error)
}

// HTTPFetcher downloads generated assets from the media CDN. Transport
// errors and 5xx responses are retried; 4xx responses are not.
type HTTPFetcher struct {
	client   *http.Client
	attempts int
	delay    time.Duration
	maxDelay time.Duration
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{client: client, attempts: 3, delay: 200 * time.Millisecond, maxDelay: 2 * time.Second}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (File, error) {
	var (
		file     File
		finalErr error
	)
	retrier := retry.NewRetrier(f.attempts, f.delay, f.maxDelay)
	err := retrier.Run(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			finalErr = fmt.Errorf("build request: %w", err)
			return nil
		}
		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				finalErr = ctx.Err()
				return nil
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			finalErr = fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
			return nil
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
		if err != nil {
			return fmt.Errorf("read %s: %w", url, err)
		}
		if len(data) > maxAssetBytes {
			finalErr = fmt.Errorf("fetch %s: file exceeds %d bytes", url, maxAssetBytes)
			return nil
		}
		file = File{Data: data, ContentType: resp.Header.Get("Content-Type")}
		finalErr = nil
		return nil
	})
	if err != nil {
		return File{}, err
	}
	if finalErr != nil {
		return File{}, finalErr
	}
	return file, nil
}
