package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/walking"
)

// Coordinates on one meridian, about 1.07 miles apart per station.
const (
	latA = 40.700
	latB = 40.7155
	latC = 40.731
	lng  = -74.000
)

func node(stop, line string) graph.NodeID {
	return graph.NodeID{Stop: stop, Line: line}
}

// twoLineBundle is the round-trip fixture: line 1 runs A-B, line 2 runs
// B-C, with a 120 s transfer at B.
func twoLineBundle() *graph.Bundle {
	adj := graph.Adjacency{
		node("A", "1"): {{To: node("B", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"}},
		node("B", "1"): {
			{To: node("A", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"},
			{To: node("B", "2"), Time: 120, Kind: graph.EdgeTransfer},
		},
		node("B", "2"): {
			{To: node("C", "2"), Time: 240, Kind: graph.EdgeRide, Line: "2"},
			{To: node("B", "1"), Time: 120, Kind: graph.EdgeTransfer},
		},
		node("C", "2"): {{To: node("B", "2"), Time: 240, Kind: graph.EdgeRide, Line: "2"}},
	}
	return graph.NewBundle(&graph.BuildResult{
		Weekday: adj,
		Weekend: adj,
		Stations: graph.StationTable{
			"A": {Name: "Alpha", Lat: latA, Lng: lng, Nodes: []graph.NodeID{node("A", "1")}},
			"B": {Name: "Bravo", Lat: latB, Lng: lng, Nodes: []graph.NodeID{node("B", "1"), node("B", "2")}},
			"C": {Name: "Charlie", Lat: latC, Lng: lng, Nodes: []graph.NodeID{node("C", "2")}},
		},
	})
}

// parallelBundle has two independent lines covering the same two
// stations, line 1 faster than line 2.
func parallelBundle() *graph.Bundle {
	adj := graph.Adjacency{
		node("A", "1"): {{To: node("C", "1"), Time: 600, Kind: graph.EdgeRide, Line: "1"}},
		node("C", "1"): {{To: node("A", "1"), Time: 600, Kind: graph.EdgeRide, Line: "1"}},
		node("A", "2"): {{To: node("C", "2"), Time: 900, Kind: graph.EdgeRide, Line: "2"}},
		node("C", "2"): {{To: node("A", "2"), Time: 900, Kind: graph.EdgeRide, Line: "2"}},
	}
	return graph.NewBundle(&graph.BuildResult{
		Weekday: adj,
		Weekend: adj,
		Stations: graph.StationTable{
			"A": {Name: "Alpha", Lat: latA, Lng: lng, Nodes: []graph.NodeID{node("A", "1"), node("A", "2")}},
			"C": {Name: "Charlie", Lat: latB, Lng: lng, Nodes: []graph.NodeID{node("C", "1"), node("C", "2")}},
		},
	})
}

func newTestFinder(b *graph.Bundle) *Finder {
	// No API key: walking falls back to the deterministic estimate.
	return NewFinder(b, walking.NewEstimator(walking.Config{}), Config{})
}

func TestRoundTripFixture(t *testing.T) {
	f := newTestFinder(twoLineBundle())

	routes := f.FindTopRoutes(context.Background(), latA, lng, latC, lng, 3, false)
	require.Len(t, routes, 1)

	r := routes[0]
	require.Len(t, r.Legs, 3)

	assert.Equal(t, LegRide, r.Legs[0].Kind)
	assert.Equal(t, "1", r.Legs[0].Line)
	assert.Equal(t, "Alpha", r.Legs[0].From)
	assert.Equal(t, "Bravo", r.Legs[0].To)
	assert.Equal(t, 1, r.Legs[0].Stops)
	assert.Equal(t, 5, r.Legs[0].Minutes)

	assert.Equal(t, LegTransfer, r.Legs[1].Kind)
	assert.Equal(t, "Bravo", r.Legs[1].At)
	assert.Equal(t, "1", r.Legs[1].FromLine)
	assert.Equal(t, "2", r.Legs[1].ToLine)
	assert.Equal(t, 2, r.Legs[1].Minutes)

	assert.Equal(t, LegRide, r.Legs[2].Kind)
	assert.Equal(t, "2", r.Legs[2].Line)
	assert.Equal(t, "Charlie", r.Legs[2].To)

	// Origin and destination sit on the stations, so walking is zero
	// and the total is pure transit: 300+120+240 seconds = 11 minutes.
	assert.Equal(t, 0, r.WalkToStation)
	assert.Equal(t, 0, r.WalkToDest)
	assert.Equal(t, 11, r.TransitMinutes)
	assert.Equal(t, 11, r.TotalMinutes)
	assert.Equal(t, "1→2", r.Signature)
	assert.Equal(t, []string{"1", "2"}, r.Lines)
	assert.True(t, r.WalkEstimated)
}

func TestLimitSortAndSignatures(t *testing.T) {
	f := newTestFinder(parallelBundle())

	routes := f.FindTopRoutes(context.Background(), latA, lng, latB, lng, 3, false)
	require.Len(t, routes, 2)
	assert.Equal(t, "1", routes[0].Signature)
	assert.Equal(t, "2", routes[1].Signature)
	assert.LessOrEqual(t, routes[0].TotalMinutes, routes[1].TotalMinutes)

	one := f.FindTopRoutes(context.Background(), latA, lng, latB, lng, 1, false)
	require.Len(t, one, 1)
	assert.Equal(t, "1", one[0].Signature)
}

func TestSignatureDedup(t *testing.T) {
	// Both exit platforms of the same station reach the destination on
	// line structure "1", so only one candidate survives.
	adj := graph.Adjacency{
		node("A", "1"): {
			{To: node("B", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"},
			{To: node("C", "1"), Time: 700, Kind: graph.EdgeRide, Line: "1"},
		},
		node("B", "1"): {{To: node("C", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"}},
		node("C", "1"): {{To: node("B", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"}},
	}
	b := graph.NewBundle(&graph.BuildResult{
		Weekday: adj,
		Weekend: adj,
		Stations: graph.StationTable{
			"A": {Name: "Alpha", Lat: latA, Lng: lng, Nodes: []graph.NodeID{node("A", "1")}},
			"B": {Name: "Bravo", Lat: latB, Lng: lng, Nodes: []graph.NodeID{node("B", "1")}},
			"C": {Name: "Charlie", Lat: latB, Lng: lng, Nodes: []graph.NodeID{node("C", "1")}},
		},
	})
	f := newTestFinder(b)

	routes := f.FindTopRoutes(context.Background(), latA, lng, latB, lng, 3, false)
	require.Len(t, routes, 1)
	assert.Equal(t, "1", routes[0].Signature)
	// The faster of the two same-signature candidates wins.
	assert.Equal(t, "B", routes[0].ExitStationID)
}

func TestOriginEqualsDestination(t *testing.T) {
	f := newTestFinder(twoLineBundle())

	routes := f.FindTopRoutes(context.Background(), latA, lng, latA, lng, 3, false)
	for _, r := range routes {
		assert.Equal(t, 0, r.TransitMinutes)
	}
}

func TestNoNearbyStations(t *testing.T) {
	f := newTestFinder(twoLineBundle())

	// Origin in another city entirely.
	assert.Empty(t, f.FindTopRoutes(context.Background(), 34.05, -118.24, latC, lng, 3, false))
	// Destination out of range.
	assert.Empty(t, f.FindTopRoutes(context.Background(), latA, lng, 34.05, -118.24, 3, false))
}

func TestUnreachableDestinationReturnsEmpty(t *testing.T) {
	// Line 1 never connects to the isolated station D.
	adj := graph.Adjacency{
		node("A", "1"): {{To: node("B", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"}},
		node("B", "1"): {{To: node("A", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"}},
		node("D", "9"): {{To: node("E", "9"), Time: 60, Kind: graph.EdgeRide, Line: "9"}},
	}
	b := graph.NewBundle(&graph.BuildResult{
		Weekday: adj,
		Weekend: adj,
		Stations: graph.StationTable{
			"A": {Name: "Alpha", Lat: latA, Lng: lng, Nodes: []graph.NodeID{node("A", "1")}},
			"D": {Name: "Delta", Lat: latC, Lng: lng, Nodes: []graph.NodeID{node("D", "9")}},
		},
	})
	f := newTestFinder(b)

	assert.Empty(t, f.FindTopRoutes(context.Background(), latA, lng, latC, lng, 3, false))
}

func TestTransitMinutesBetween(t *testing.T) {
	f := newTestFinder(twoLineBundle())

	mins, ok := f.TransitMinutesBetween(context.Background(), latA, lng, latC, lng, false)
	require.True(t, ok)
	assert.Equal(t, 11, mins)

	_, ok = f.TransitMinutesBetween(context.Background(), 34.05, -118.24, latC, lng, false)
	assert.False(t, ok)
}
