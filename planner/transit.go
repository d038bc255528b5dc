package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/bluele/gcache"

	"github.com/micmap/transit-core/geo"
	"github.com/micmap/transit-core/routing"
)

// walkPaceMinPerMile is the on-foot pace for short hops between stops.
const walkPaceMinPerMile = 20

// RouteSource supplies best transit routes between coordinates. The
// routing.Finder satisfies it through FinderSource; tests substitute
// their own.
type RouteSource interface {
	BestRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64, weekend bool) (*routing.Route, bool)
}

// FinderSource adapts a routing.Finder to RouteSource.
type FinderSource struct {
	Finder *routing.Finder
}

func (f FinderSource) BestRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64, weekend bool) (*routing.Route, bool) {
	routes := f.Finder.FindTopRoutes(ctx, fromLat, fromLng, toLat, toLng, 1, weekend)
	if len(routes) == 0 {
		return nil, false
	}
	return &routes[0], true
}

// transitLookup resolves point-to-point transit times for one planning
// session, caching by rounded coordinates plus the walkable threshold.
// The cache is read-after-write consistent for identical keys.
type transitLookup struct {
	source   RouteSource
	walkable float64
	weekend  bool
	cache    gcache.Cache
}

func newTransitLookup(source RouteSource, walkableMiles float64, weekend bool) *transitLookup {
	return &transitLookup{
		source:   source,
		walkable: walkableMiles,
		weekend:  weekend,
		cache:    gcache.New(TransitCacheSize).LRU().Build(),
	}
}

func (t *transitLookup) key(fromLat, fromLng, toLat, toLng float64) string {
	return fmt.Sprintf("%.3f,%.3f|%.3f,%.3f|%.2f", fromLat, fromLng, toLat, toLng, t.walkable)
}

// between returns the leg from one point to another: a walk inside the
// walkable threshold, a found route beyond it, and a distance-based
// estimate when no route exists.
func (t *transitLookup) between(ctx context.Context, fromLat, fromLng, toLat, toLng float64) TransitInfo {
	key := t.key(fromLat, fromLng, toLat, toLng)
	if cached, err := t.cache.Get(key); err == nil {
		if info, ok := cached.(TransitInfo); ok {
			return info
		}
	}

	info := t.resolve(ctx, fromLat, fromLng, toLat, toLng)
	t.cache.Set(key, info)
	return info
}

func (t *transitLookup) resolve(ctx context.Context, fromLat, fromLng, toLat, toLng float64) TransitInfo {
	distance := geo.HaversineMiles(fromLat, fromLng, toLat, toLng)

	if distance < t.walkable {
		mins := int(math.Round(distance * walkPaceMinPerMile))
		if mins < 5 {
			mins = 5
		}
		return TransitInfo{Mins: mins, Kind: TransitWalk}
	}

	if route, ok := t.source.BestRoute(ctx, fromLat, fromLng, toLat, toLng, t.weekend); ok {
		return TransitInfo{Mins: route.TotalMinutes, Kind: TransitRoute, Route: route}
	}

	// No route: short hops still read as walks, longer ones get a
	// coarse 5 min overhead plus 3 min/mile transit guess.
	var mins int
	if distance < 0.3 {
		mins = int(math.Round(distance * walkPaceMinPerMile))
	} else {
		mins = int(math.Round(5 + distance*3))
	}
	if mins < 10 {
		mins = 10
	}
	return TransitInfo{Mins: mins, Kind: TransitEstimate, Estimated: true}
}
