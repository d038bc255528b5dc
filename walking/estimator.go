// Package walking estimates pedestrian travel times between coordinate
// pairs. A routing API gives street-accurate durations; when the call
// fails or no key is configured, a straight-line estimate scaled for
// the street grid stands in, flagged so callers can tell them apart.
package walking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/bluele/gcache"

	"github.com/micmap/transit-core/geo"
)

const (
	// MinutesPerMile is the fallback walking pace, 2.5 mph.
	MinutesPerMile = 24.0
	// GridFactor inflates straight-line distance to approximate a
	// street-grid walking path.
	GridFactor = 1.4

	DefaultBaseURL   = "https://router.hereapi.com/v8/routes"
	DefaultTimeout   = 5 * time.Second
	DefaultCacheSize = 2000
	defaultCacheTTL  = 24 * time.Hour
)

// Estimate is one resolved walking leg.
type Estimate struct {
	Seconds int     `json:"durationSeconds"`
	Miles   float64 `json:"distanceMiles"`
	// Estimated is true when the value comes from the haversine
	// fallback rather than the routing API.
	Estimated bool `json:"estimated"`
}

// Minutes rounds the duration to whole minutes.
func (e Estimate) Minutes() int {
	return int(math.Round(float64(e.Seconds) / 60))
}

// Config holds the estimator's tunables. Zero values select defaults;
// an empty APIKey disables the routing API entirely.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
}

// Estimator answers walking-time queries with an LRU cache in front of
// the routing API. Safe for concurrent use.
type Estimator struct {
	cfg    Config
	client *http.Client
	cache  gcache.Cache
}

func NewEstimator(cfg Config) *Estimator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	return &Estimator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache: gcache.New(cfg.CacheSize).
			LRU().
			Expiration(defaultCacheTTL).
			Build(),
	}
}

// Between estimates the walk from (fromLat, fromLng) to (toLat, toLng).
// It never returns an error: any API failure degrades to the haversine
// fallback.
func (e *Estimator) Between(ctx context.Context, fromLat, fromLng, toLat, toLng float64) Estimate {
	key := cacheKey(fromLat, fromLng, toLat, toLng)
	if cached, err := e.cache.Get(key); err == nil {
		if est, ok := cached.(Estimate); ok {
			return est
		}
	}

	est, err := e.query(ctx, fromLat, fromLng, toLat, toLng)
	if err != nil {
		if e.cfg.APIKey != "" {
			log.Printf("walking: routing API failed, using estimate: %v", err)
		}
		est = e.Fallback(fromLat, fromLng, toLat, toLng)
	}

	// Fallback values stay out of the cache so a transient API failure
	// does not pin an estimate for the full TTL.
	if !est.Estimated {
		e.cache.Set(key, est)
	}
	return est
}

// Fallback computes the straight-line estimate at MinutesPerMile with
// the grid factor applied.
func (e *Estimator) Fallback(fromLat, fromLng, toLat, toLng float64) Estimate {
	miles := geo.HaversineMiles(fromLat, fromLng, toLat, toLng) * GridFactor
	return Estimate{
		Seconds:   int(math.Round(miles * MinutesPerMile * 60)),
		Miles:     math.Round(miles*100) / 100,
		Estimated: true,
	}
}

func (e *Estimator) query(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (Estimate, error) {
	if e.cfg.APIKey == "" {
		return Estimate{}, fmt.Errorf("no routing API key configured")
	}

	q := url.Values{}
	q.Set("transportMode", "pedestrian")
	q.Set("origin", fmt.Sprintf("%f,%f", fromLat, fromLng))
	q.Set("destination", fmt.Sprintf("%f,%f", toLat, toLng))
	q.Set("return", "summary")
	q.Set("apiKey", e.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Estimate{}, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return Estimate{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Estimate{}, fmt.Errorf("routing API status %d", resp.StatusCode)
	}

	var body struct {
		Routes []struct {
			Sections []struct {
				Summary struct {
					Duration int     `json:"duration"`
					Length   float64 `json:"length"`
				} `json:"summary"`
			} `json:"sections"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Estimate{}, err
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Sections) == 0 {
		return Estimate{}, fmt.Errorf("routing API returned no routes")
	}

	sum := body.Routes[0].Sections[0].Summary
	return Estimate{
		Seconds: sum.Duration,
		Miles:   math.Round(sum.Length/geo.MetersPerMile*100) / 100,
	}, nil
}

// cacheKey rounds coordinates to 4 decimals, about 11 meters, so
// nearby queries share an entry.
func cacheKey(fromLat, fromLng, toLat, toLng float64) string {
	return fmt.Sprintf("%.4f,%.4f|%.4f,%.4f", fromLat, fromLng, toLat, toLng)
}
