package routing

import (
	"math"

	"github.com/micmap/transit-core/graph"
)

// LegKind mirrors the edge kinds at the itinerary level.
type LegKind string

const (
	LegRide     LegKind = "ride"
	LegTransfer LegKind = "transfer"
)

// Leg is one rendered step of a route. Ride legs carry Line, the
// endpoint stations, and a stop count; transfer legs carry the station
// they happen at and the line change.
type Leg struct {
	Kind    LegKind `json:"type"`
	Minutes int     `json:"time"`

	Line   string `json:"line,omitempty"`
	From   string `json:"from,omitempty"`
	FromID string `json:"fromId,omitempty"`
	To     string `json:"to,omitempty"`
	ToID   string `json:"toId,omitempty"`
	Stops  int    `json:"stops,omitempty"`

	At       string `json:"at,omitempty"`
	AtID     string `json:"atId,omitempty"`
	FromLine string `json:"fromLine,omitempty"`
	ToLine   string `json:"toLine,omitempty"`
}

func edgeTime(adj graph.Adjacency, from, to graph.NodeID) int {
	for _, e := range adj[from] {
		if e.To == to {
			return e.Time
		}
	}
	return graph.DefaultEdgeSec
}

func stationLabel(b *graph.Bundle, n graph.NodeID) (name, id string) {
	if sid, ok := b.StationFor(n); ok {
		return b.Stations[sid].Name, sid
	}
	return n.Stop, n.Stop
}

func minutes(sec int) int {
	return int(math.Round(float64(sec) / 60))
}

// collapseLegs turns a raw node path into ride and transfer legs.
// Consecutive same-line nodes become one ride leg; a zero-stop run is a
// transfer waypoint, not a ride. Adjacent transfers with no ride
// between them merge into a single leg spanning the line change.
func collapseLegs(b *graph.Bundle, adj graph.Adjacency, path []graph.NodeID) []Leg {
	if len(path) < 2 {
		return nil
	}

	var legs []Leg
	i := 0
	for i < len(path)-1 {
		line := path[i].Line

		j := i + 1
		for j < len(path) && path[j].Line == line {
			j++
		}

		rideSec := 0
		for k := i; k < j-1; k++ {
			rideSec += edgeTime(adj, path[k], path[k+1])
		}

		if stops := j - i - 1; stops > 0 {
			fromName, fromID := stationLabel(b, path[i])
			toName, toID := stationLabel(b, path[j-1])
			legs = append(legs, Leg{
				Kind:    LegRide,
				Line:    line,
				From:    fromName,
				FromID:  fromID,
				To:      toName,
				ToID:    toID,
				Minutes: minutes(rideSec),
				Stops:   stops,
			})
		}

		if j < len(path) {
			from, to := path[j-1], path[j]
			sec := edgeTime(adj, from, to)
			atName, atID := stationLabel(b, from)

			if n := len(legs); n > 0 && legs[n-1].Kind == LegTransfer {
				legs[n-1].ToLine = to.Line
				legs[n-1].Minutes += minutes(sec)
			} else {
				legs = append(legs, Leg{
					Kind:     LegTransfer,
					At:       atName,
					AtID:     atID,
					FromLine: from.Line,
					ToLine:   to.Line,
					Minutes:  minutes(sec),
				})
			}
		}

		i = j
	}
	return legs
}
