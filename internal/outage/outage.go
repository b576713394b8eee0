// Package outage fetches hourly power-outage schedules from the
// outage-data-ua JSON feed. The real implementation uses HTTP; the fake
// implementation allows testing without a network.
package outage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultURL is the Kyiv region feed.
const DefaultURL = "https://raw.githubusercontent.com/Baskerville42/outage-data-ua/main/data/kyiv-region.json"

// DefaultQueue is the outage group shown by default.
const DefaultQueue = "GPV5.1"

var (
	// ErrRequest wraps transport failures, including timeouts.
	ErrRequest = errors.New("schedule request failed")
	// ErrStatus is returned for any non-200 response.
	ErrStatus = errors.New("unexpected schedule response status")
	// ErrDecode wraps malformed JSON.
	ErrDecode = errors.New("malformed schedule document")
	// ErrNoData is returned when the document has no entry for the requested
	// day or queue.
	ErrNoData = errors.New("no schedule for day and queue")
)

// Fetcher returns the raw hour → state mapping for the day containing day.
type Fetcher interface {
	Fetch(ctx context.Context, day time.Time) (map[string]string, error)
}

// RegionData is the top-level document of the feed.
type RegionData struct {
	RegionID    string `json:"regionId"`
	LastUpdated string `json:"lastUpdated"`
	Fact        Fact   `json:"fact"`
}

// Fact holds actual outage data. Data is keyed by the unix timestamp of a
// day's local midnight, then queue id, then hour ("1".."24").
type Fact struct {
	Data   map[string]map[string]map[string]string `json:"data"`
	Update string                                   `json:"update"`
	Today  int64                                    `json:"today"`
}

// DayKey returns the document key for the day containing t: local midnight
// in t's location as seconds since the epoch.
func DayKey(t time.Time) string {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return strconv.FormatInt(midnight.Unix(), 10)
}

// Hours selects the raw hour mapping for day and queue.
func (d RegionData) Hours(day time.Time, queue string) (map[string]string, error) {
	key := DayKey(day)
	queues, ok := d.Fact.Data[key]
	if !ok {
		return nil, fmt.Errorf("%w: day %s", ErrNoData, key)
	}
	hours, ok := queues[queue]
	if !ok {
		return nil, fmt.Errorf("%w: queue %s on day %s", ErrNoData, queue, key)
	}
	out := make(map[string]string, len(hours))
	for k, v := range hours {
		out[k] = v
	}
	return out, nil
}
