// Package routing finds ranked, structurally distinct transit routes
// between two coordinates over a prebuilt graph, combining in-graph
// travel time with walking legs at both ends.
package routing

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/walking"
)

const (
	// DefaultOriginRadiusMiles bounds the walk to the entry station.
	DefaultOriginRadiusMiles = 0.5
	// DefaultDestRadiusMiles is wider than the origin radius because
	// exit stations are filtered later by true walking time, not
	// straight-line distance.
	DefaultDestRadiusMiles = 1.0
	// DefaultComplexToleranceMiles widens the entry frontier to other
	// stations effectively co-located with the closest one.
	DefaultComplexToleranceMiles = 0.02
	// DefaultLimit is the candidate count when the caller passes 0.
	DefaultLimit = 3
)

// Config carries the finder's radii. Zero values select defaults.
type Config struct {
	OriginRadiusMiles     float64
	DestRadiusMiles       float64
	ComplexToleranceMiles float64
}

func (c *Config) fill() {
	if c.OriginRadiusMiles <= 0 {
		c.OriginRadiusMiles = DefaultOriginRadiusMiles
	}
	if c.DestRadiusMiles <= 0 {
		c.DestRadiusMiles = DefaultDestRadiusMiles
	}
	if c.ComplexToleranceMiles <= 0 {
		c.ComplexToleranceMiles = DefaultComplexToleranceMiles
	}
}

// Route is one ranked candidate. Times are whole minutes.
type Route struct {
	TotalMinutes    int      `json:"totalTime"`
	WalkToStation   int      `json:"walkToStation"`
	TransitMinutes  int      `json:"subwayTime"`
	WalkToDest      int      `json:"walkToVenue"`
	OriginStation   string   `json:"originStation"`
	OriginStationID string   `json:"originStationId"`
	ExitStation     string   `json:"exitStation"`
	ExitStationID   string   `json:"exitStationId"`
	Lines           []string `json:"lines"`
	Legs            []Leg    `json:"legs"`
	Signature       string   `json:"signature"`
	WalkEstimated   bool     `json:"walkEstimated"`
	// RealTimeValidated is set when a live-arrivals check corrected
	// the first ride leg's line.
	RealTimeValidated bool `json:"realTimeValidated,omitempty"`
}

// Finder answers findTopRoutes queries. The graph bundle is read-only,
// so one Finder serves concurrent requests.
type Finder struct {
	bundle *graph.Bundle
	walker *walking.Estimator
	cfg    Config
}

func NewFinder(bundle *graph.Bundle, walker *walking.Estimator, cfg Config) *Finder {
	cfg.fill()
	return &Finder{bundle: bundle, walker: walker, cfg: cfg}
}

// FindTopRoutes returns up to limit routes from origin to destination,
// fastest first, each with a distinct line signature. An empty slice
// means no transit route exists; that is an answer, not an error.
func (f *Finder) FindTopRoutes(ctx context.Context, originLat, originLng, destLat, destLng float64, limit int, weekend bool) []Route {
	if limit <= 0 {
		limit = DefaultLimit
	}
	adj := f.bundle.ForDay(weekend)

	originStations := f.bundle.StationsWithinRadius(originLat, originLng, f.cfg.OriginRadiusMiles)
	destStations := f.bundle.StationsWithinRadius(destLat, destLng, f.cfg.DestRadiusMiles)
	if len(originStations) == 0 || len(destStations) == 0 {
		return nil
	}

	// Entry frontier: the closest origin station plus any other inside
	// the complex tolerance of it.
	closest := originStations[0]
	var entryNodes []graph.NodeID
	for _, s := range originStations {
		if s.Miles > closest.Miles+f.cfg.ComplexToleranceMiles {
			break
		}
		for _, n := range s.Station.Nodes {
			if _, ok := adj[n]; ok {
				entryNodes = append(entryNodes, n)
			}
		}
	}
	if len(entryNodes) == 0 {
		return nil
	}

	destNodes := make(map[graph.NodeID]bool)
	nodeStation := make(map[graph.NodeID]graph.NearbyStation)
	for _, s := range destStations {
		for _, n := range s.Station.Nodes {
			if _, ok := adj[n]; !ok {
				continue
			}
			destNodes[n] = true
			if _, dup := nodeStation[n]; !dup {
				nodeStation[n] = s
			}
		}
	}
	if len(destNodes) == 0 {
		return nil
	}

	res := shortestPaths(adj, entryNodes, destNodes)

	// Walking estimates: one for the entry, one per candidate exit
	// station, the latter fetched concurrently and joined before
	// ranking.
	entryWalk := f.walker.Between(ctx, originLat, originLng, closest.Station.Lat, closest.Station.Lng)
	exitWalks := f.exitWalks(ctx, destLat, destLng, nodeStation, res)

	var candidates []Route
	for n := range destNodes {
		transitSec, ok := res.reached(n)
		if !ok {
			continue
		}
		st, ok := nodeStation[n]
		if !ok {
			continue
		}
		exitWalk, ok := exitWalks[st.ID]
		if !ok {
			continue
		}

		legs := collapseLegs(f.bundle, adj, res.pathTo(n))
		var lines []string
		for _, l := range legs {
			if l.Kind == LegRide {
				lines = append(lines, l.Line)
			}
		}

		candidates = append(candidates, Route{
			TotalMinutes:    entryWalk.Minutes() + minutes(transitSec) + exitWalk.Minutes(),
			WalkToStation:   entryWalk.Minutes(),
			TransitMinutes:  minutes(transitSec),
			WalkToDest:      exitWalk.Minutes(),
			OriginStation:   closest.Station.Name,
			OriginStationID: closest.ID,
			ExitStation:     st.Station.Name,
			ExitStationID:   st.ID,
			Lines:           lines,
			Legs:            legs,
			Signature:       strings.Join(lines, "→"),
			WalkEstimated:   entryWalk.Estimated || exitWalk.Estimated,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalMinutes < candidates[j].TotalMinutes
	})

	// First-per-signature keeps the set diverse: two near-identical
	// timings on the same line sequence collapse to one entry.
	seen := make(map[string]bool)
	out := make([]Route, 0, limit)
	for _, c := range candidates {
		if seen[c.Signature] {
			continue
		}
		seen[c.Signature] = true
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

// exitWalks resolves walking estimates for every destination station
// that the search actually reached.
func (f *Finder) exitWalks(ctx context.Context, destLat, destLng float64, nodeStation map[graph.NodeID]graph.NearbyStation, res *searchResult) map[string]walking.Estimate {
	reachedStations := make(map[string]graph.NearbyStation)
	for n, st := range nodeStation {
		if _, ok := res.reached(n); ok {
			reachedStations[st.ID] = st
		}
	}

	out := make(map[string]walking.Estimate, len(reachedStations))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for id, st := range reachedStations {
		wg.Add(1)
		go func(id string, st graph.NearbyStation) {
			defer wg.Done()
			est := f.walker.Between(ctx, st.Station.Lat, st.Station.Lng, destLat, destLng)
			mu.Lock()
			out[id] = est
			mu.Unlock()
		}(id, st)
	}
	wg.Wait()
	return out
}

// TransitMinutesBetween is the quick lookup the scheduler uses: the
// best route's total minutes, or false when no route exists.
func (f *Finder) TransitMinutesBetween(ctx context.Context, fromLat, fromLng, toLat, toLng float64, weekend bool) (int, bool) {
	routes := f.FindTopRoutes(ctx, fromLat, fromLng, toLat, toLng, 1, weekend)
	if len(routes) == 0 {
		return 0, false
	}
	return routes[0].TotalMinutes, true
}
