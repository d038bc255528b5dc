package realtime

import (
	"context"
	"log"

	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/routing"
)

// ValidateFirstLeg checks the first ride leg of each route against live
// arrivals at its origin station and, when the planned line shows no
// service in the needed direction but a sibling line does, swaps the
// leg onto that line. Any failure leaves the route untouched.
func (c *Client) ValidateFirstLeg(ctx context.Context, bundle *graph.Bundle, routes []routing.Route, destLat float64) {
	for i := range routes {
		r := &routes[i]
		leg := firstRideLeg(r)
		if leg == nil || r.OriginStationID == "" {
			continue
		}

		st, ok := bundle.Stations[r.OriginStationID]
		if !ok {
			continue
		}
		lines := stationLines(st, leg.Line)

		direction := "Downtown"
		if destLat > st.Lat {
			direction = "Uptown"
		}

		live := c.LinesWithService(ctx, lines, r.OriginStationID, direction)
		if len(live) == 0 || contains(live, leg.Line) {
			continue
		}

		log.Printf("realtime: swapping first leg %s -> %s at %s", leg.Line, live[0], r.OriginStation)
		leg.Line = live[0]
		r.RealTimeValidated = true
	}
}

func firstRideLeg(r *routing.Route) *routing.Leg {
	for i := range r.Legs {
		if r.Legs[i].Kind == routing.LegRide {
			return &r.Legs[i]
		}
	}
	return nil
}

// stationLines collects the distinct lines serving a station, seeding
// with the planned line in case the node list is incomplete.
func stationLines(st graph.Station, planned string) []string {
	seen := map[string]bool{planned: true}
	lines := []string{planned}
	for _, n := range st.Nodes {
		if !seen[n.Line] {
			seen[n.Line] = true
			lines = append(lines, n.Line)
		}
	}
	return lines
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
