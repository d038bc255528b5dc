package graph

import (
	"log"
	"sort"

	"github.com/micmap/transit-core/gtfs"
)

// DefaultEdgeSec is the fallback traversal time when a stop_times pair
// has a missing timestamp or a negative delta from the schedule's
// midnight wraparound.
const DefaultEdgeSec = 120

// Variant names one of the two service partitions a graph is built for.
type Variant string

const (
	Weekday Variant = "weekday"
	Weekend Variant = "weekend"
)

// Builder turns a loaded GTFS snapshot plus the hand-curated complex
// links into per-variant adjacency structures and a station table.
// Builds are deterministic for a fixed snapshot.
type Builder struct {
	tables    *gtfs.Tables
	complexes []ComplexLink
}

func NewBuilder(tables *gtfs.Tables, complexes []ComplexLink) *Builder {
	return &Builder{tables: tables, complexes: complexes}
}

// BuildResult holds everything one build run produces.
type BuildResult struct {
	Weekday  Adjacency
	Weekend  Adjacency
	Stations StationTable
}

// Build produces both service-variant graphs and the shared station
// table. The station node lists accumulate across both variants.
func (b *Builder) Build() *BuildResult {
	services := b.partitionServices()
	log.Printf("services: %d weekday, %d weekend", len(services[Weekday]), len(services[Weekend]))

	stopParent := make(map[string]string, len(b.tables.Stops))
	stations := make(StationTable)
	for _, s := range b.tables.Stops {
		parent := s.ParentStation
		if parent == "" {
			parent = s.StopID
		}
		stopParent[s.StopID] = parent
		// Parent stations carry their own row with no parent_station set.
		if s.ParentStation == "" && s.HasCoords {
			stations[s.StopID] = Station{Name: s.Name, Lat: s.Lat, Lng: s.Lng}
		}
	}

	tripStops := b.orderedTripStops()

	res := &BuildResult{Stations: stations}
	res.Weekday = b.generate(Weekday, services[Weekday], stopParent, tripStops, stations)
	res.Weekend = b.generate(Weekend, services[Weekend], stopParent, tripStops, stations)
	return res
}

// partitionServices splits service ids into the weekday and weekend
// sets. A service running Monday counts as weekday; Saturday or Sunday
// counts as weekend. A service may legitimately land in both sets.
func (b *Builder) partitionServices() map[Variant]map[string]bool {
	out := map[Variant]map[string]bool{
		Weekday: {},
		Weekend: {},
	}
	for _, c := range b.tables.Calendar {
		if c.Monday {
			out[Weekday][c.ServiceID] = true
		}
		if c.Saturday || c.Sunday {
			out[Weekend][c.ServiceID] = true
		}
	}
	return out
}

func (b *Builder) orderedTripStops() map[string][]gtfs.StopTime {
	byTrip := make(map[string][]gtfs.StopTime)
	for _, st := range b.tables.StopTimes {
		byTrip[st.TripID] = append(byTrip[st.TripID], st)
	}
	for trip := range byTrip {
		list := byTrip[trip]
		sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	}
	return byTrip
}

// generate builds one variant's adjacency. Edge insertion order matters:
// ride edges first, then explicit transfers, then super-complex links,
// then synthesized implicit transfers; only the first edge for a given
// (from, to) pair is kept, so explicit data always wins.
func (b *Builder) generate(v Variant, services map[string]bool, stopParent map[string]string, tripStops map[string][]gtfs.StopTime, stations StationTable) Adjacency {
	adj := make(Adjacency)
	seen := make(map[[2]NodeID]bool)
	parentNodes := make(map[string]map[NodeID]bool)

	addEdge := func(u, v NodeID, sec int, kind EdgeKind, line string) {
		key := [2]NodeID{u, v}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[u] = append(adj[u], Edge{To: v, Time: sec, Kind: kind, Line: line})
	}

	trackNode := func(n NodeID, stopID string) {
		parent, ok := stopParent[stopID]
		if !ok {
			parent = stopID
		}
		if parentNodes[parent] == nil {
			parentNodes[parent] = make(map[NodeID]bool)
		}
		parentNodes[parent][n] = true
	}

	// Ride edges from scheduled trips in this variant.
	for _, trip := range b.tables.Trips {
		if !services[trip.ServiceID] {
			continue
		}
		stops := tripStops[trip.TripID]
		if len(stops) < 2 {
			continue
		}
		for i := 0; i < len(stops)-1; i++ {
			from, to := stops[i], stops[i+1]
			u := NodeID{Stop: from.StopID, Line: trip.RouteID}
			w := NodeID{Stop: to.StopID, Line: trip.RouteID}

			sec := DefaultEdgeSec
			if from.ArrivalSec >= 0 && to.ArrivalSec >= 0 {
				if d := to.ArrivalSec - from.ArrivalSec; d >= 0 {
					sec = d
				}
			}
			addEdge(u, w, sec, EdgeRide, trip.RouteID)
			trackNode(u, from.StopID)
			trackNode(w, to.StopID)
		}
	}

	// Transfer tier 1: the explicit transfer table, bidirectional.
	connect := func(fromParent, toParent string, sec int) {
		for u := range parentNodes[fromParent] {
			for w := range parentNodes[toParent] {
				if u == w || u.Line == w.Line {
					continue
				}
				addEdge(u, w, sec, EdgeTransfer, "")
			}
		}
	}
	for _, t := range b.tables.Transfers {
		fp := stopParent[t.FromStopID]
		tp := stopParent[t.ToStopID]
		if fp == "" {
			fp = t.FromStopID
		}
		if tp == "" {
			tp = t.ToStopID
		}
		connect(fp, tp, t.MinTimeSec)
		connect(tp, fp, t.MinTimeSec)
	}

	// Transfer tier 2: hand-curated super-complex links, as declared.
	for _, c := range b.complexes {
		connect(c.From, c.To, c.Time)
	}

	// Transfer tier 3: implicit same-station transfers between lines not
	// already connected above.
	for _, nodes := range parentNodes {
		for u := range nodes {
			for w := range nodes {
				if u == w || u.Line == w.Line {
					continue
				}
				addEdge(u, w, DefaultEdgeSec, EdgeTransfer, "")
			}
		}
	}

	// Accumulate observed nodes into the station table.
	for parent, nodes := range parentNodes {
		st, ok := stations[parent]
		if !ok {
			continue
		}
		for n := range nodes {
			if !containsNode(st.Nodes, n) {
				st.Nodes = append(st.Nodes, n)
			}
		}
		sort.Slice(st.Nodes, func(i, j int) bool { return st.Nodes[i].String() < st.Nodes[j].String() })
		stations[parent] = st
	}

	log.Printf("%s graph: %d nodes, %d edges", v, len(adj), len(seen))
	return adj
}

func containsNode(nodes []NodeID, n NodeID) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
