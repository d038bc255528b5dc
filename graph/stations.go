package graph

import (
	"sort"

	"github.com/micmap/transit-core/geo"
)

// NearbyStation is a station paired with its straight-line distance
// from a query point.
type NearbyStation struct {
	ID      string
	Station Station
	Miles   float64
}

// StationsWithinRadius returns every station within radiusMiles of the
// point, nearest first. Stations without nodes are skipped since they
// cannot anchor a route.
func (b *Bundle) StationsWithinRadius(lat, lng, radiusMiles float64) []NearbyStation {
	var out []NearbyStation
	for id, st := range b.Stations {
		if len(st.Nodes) == 0 {
			continue
		}
		d := geo.HaversineMiles(lat, lng, st.Lat, st.Lng)
		if d <= radiusMiles {
			out = append(out, NearbyStation{ID: id, Station: st, Miles: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Miles != out[j].Miles {
			return out[i].Miles < out[j].Miles
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// NearestStation returns the closest station with nodes, or false when
// the table is empty.
func (b *Bundle) NearestStation(lat, lng float64) (NearbyStation, bool) {
	best := NearbyStation{Miles: -1}
	for id, st := range b.Stations {
		if len(st.Nodes) == 0 {
			continue
		}
		d := geo.HaversineMiles(lat, lng, st.Lat, st.Lng)
		if best.Miles < 0 || d < best.Miles {
			best = NearbyStation{ID: id, Station: st, Miles: d}
		}
	}
	return best, best.Miles >= 0
}
