// Package realtime reads GTFS-RT trip-update feeds and answers
// upcoming-arrival queries per line and stop. Everything here is
// best-effort: a dead feed yields empty arrivals, never an error the
// caller has to unwind.
package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/bluele/gcache"
	"google.golang.org/protobuf/proto"
)

const (
	// feedTTL bounds how stale a cached feed may be.
	feedTTL = 30 * time.Second
	// boardingBufferSec keeps trains at the platform visible.
	boardingBufferSec = 60
	// horizonMin drops arrivals too far out to matter.
	horizonMin = 30
	// maxArrivals caps the list per query.
	maxArrivals = 6

	defaultTimeout = 8 * time.Second
)

// Arrival is one upcoming train at a stop.
type Arrival struct {
	Line      string `json:"line"`
	Direction string `json:"direction"`
	MinsAway  int    `json:"minsAway"`
}

// customDirections overrides the uptown/downtown labels for lines that
// do not run north-south.
var customDirections = map[string]map[string]string{
	"L": {"N": "Manhattan", "S": "Brooklyn"},
	"G": {"N": "Queens", "S": "Brooklyn"},
	"J": {"N": "Manhattan", "S": "Queens"},
	"Z": {"N": "Manhattan", "S": "Queens"},
	"M": {"N": "Manhattan", "S": "Brooklyn"},
	"S": {"N": "Times Sq", "S": "Grand Central"},
}

// Client fetches and caches trip-update feeds. Feeds maps a line id to
// its feed URL; several lines commonly share one URL.
type Client struct {
	feeds  map[string]string
	client *http.Client
	cache  gcache.Cache
	now    func() time.Time
}

func NewClient(feeds map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		feeds:  feeds,
		client: &http.Client{Timeout: timeout},
		cache: gcache.New(len(feeds) + 1).
			LRU().
			Expiration(feedTTL).
			Build(),
		now: time.Now,
	}
}

// ArrivalsFor returns upcoming arrivals for a line at a parent stop,
// soonest first, capped at maxArrivals. Unknown line or any fetch
// failure returns an empty slice.
func (c *Client) ArrivalsFor(ctx context.Context, line, stopID string) []Arrival {
	url, ok := c.feeds[strings.ToUpper(line)]
	if !ok {
		return nil
	}
	fm, err := c.feed(ctx, url)
	if err != nil {
		return nil
	}
	return extractArrivals(fm, stopID, c.now())
}

// LinesWithService filters lines to those showing at least one live
// arrival at the stop, optionally in a required direction.
func (c *Client) LinesWithService(ctx context.Context, lines []string, stopID, direction string) []string {
	var live []string
	for _, line := range lines {
		arrivals := c.ArrivalsFor(ctx, line, stopID)
		for _, a := range arrivals {
			// Feeds are shared across lines, so re-check the line.
			if a.Line != line {
				continue
			}
			if direction != "" && a.Direction != direction {
				continue
			}
			live = append(live, line)
			break
		}
	}
	return live
}

func (c *Client) feed(ctx context.Context, url string) (*gtfsrtpb.FeedMessage, error) {
	if cached, err := c.cache.Get(url); err == nil {
		if fm, ok := cached.(*gtfsrtpb.FeedMessage); ok {
			return fm, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(body, &fm); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	c.cache.Set(url, &fm)
	return &fm, nil
}

// extractArrivals pulls arrivals for one parent stop out of a decoded
// feed. Stop ids match by prefix so a parent id catches both
// directional platforms; the platform suffix becomes the direction.
func extractArrivals(fm *gtfsrtpb.FeedMessage, stopID string, now time.Time) []Arrival {
	nowSec := now.Unix()
	var out []Arrival

	for _, e := range fm.Entity {
		tu := e.TripUpdate
		if tu == nil || tu.Trip == nil || tu.Trip.RouteId == nil {
			continue
		}
		line := *tu.Trip.RouteId
		for _, stu := range tu.StopTimeUpdate {
			if stu.StopId == nil || !strings.HasPrefix(*stu.StopId, stopID) {
				continue
			}
			if stu.Arrival == nil || stu.Arrival.Time == nil {
				continue
			}
			at := *stu.Arrival.Time
			if at <= nowSec-boardingBufferSec {
				continue
			}
			mins := int((at - nowSec + 30) / 60)
			if mins > horizonMin {
				continue
			}
			if mins < 0 {
				mins = 0
			}
			out = append(out, Arrival{
				Line:      line,
				Direction: directionLabel(line, *stu.StopId),
				MinsAway:  mins,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].MinsAway < out[j].MinsAway })
	if len(out) > maxArrivals {
		out = out[:maxArrivals]
	}
	return out
}

func directionLabel(line, platformID string) string {
	suffix := ""
	if n := len(platformID); n > 0 {
		suffix = platformID[n-1:]
	}
	if custom, ok := customDirections[line]; ok {
		if label, ok := custom[suffix]; ok {
			return label
		}
	}
	if suffix == "N" {
		return "Uptown"
	}
	return "Downtown"
}
