package outage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 5 * time.Second

// HTTPFetcher downloads the feed document on every call.
type HTTPFetcher struct {
	url    string
	queue  string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given feed URL and queue. A
// non-positive timeout uses DefaultTimeout.
func NewHTTPFetcher(url, queue string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		url:    url,
		queue:  queue,
		client: &http.Client{Timeout: timeout},
	}
}

// Queue returns the queue id this fetcher selects.
func (f *HTTPFetcher) Queue() string {
	return f.queue
}

// Fetch downloads the document and selects day and queue.
func (f *HTTPFetcher) Fetch(ctx context.Context, day time.Time) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d", ErrStatus, resp.StatusCode)
	}

	var doc RegionData
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc.Hours(day, f.queue)
}
