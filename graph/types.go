// Package graph models the routable transit network: one node per
// (stop, line) platform, ride edges between consecutive scheduled
// stops, and transfer edges between lines at the same or a connected
// station complex. The builder produces one graph per service variant
// (weekday/weekend) plus a station metadata table; both are immutable
// once built.
package graph

import (
	"fmt"
	"strings"
)

// NodeID identifies a platform: the line serving a specific GTFS stop.
// Directional stops keep their N/S suffix in Stop, so two directions of
// the same line at one station are distinct nodes.
type NodeID struct {
	Stop string
	Line string
}

func (n NodeID) String() string {
	return n.Stop + "_" + n.Line
}

// MarshalText lets NodeID serve as a JSON map key in the serialized
// graph, keeping the stopId_line format of the on-disk files.
func (n NodeID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NodeID) UnmarshalText(b []byte) error {
	stop, line, ok := strings.Cut(string(b), "_")
	if !ok {
		return fmt.Errorf("node id %q: missing line separator", string(b))
	}
	n.Stop = stop
	n.Line = line
	return nil
}

// EdgeKind distinguishes riding a train from changing lines on foot.
type EdgeKind string

const (
	EdgeRide     EdgeKind = "ride"
	EdgeTransfer EdgeKind = "transfer"
)

// Edge is a directed connection with a traversal time in seconds.
// Line is set only on ride edges.
type Edge struct {
	To   NodeID   `json:"to"`
	Time int      `json:"time"`
	Kind EdgeKind `json:"type"`
	Line string   `json:"line,omitempty"`
}

// Adjacency maps each node to its ordered outgoing edges.
type Adjacency map[NodeID][]Edge

// Station is the metadata record for one physical parent station.
type Station struct {
	Name  string   `json:"name"`
	Lat   float64  `json:"lat"`
	Lng   float64  `json:"lng"`
	Nodes []NodeID `json:"nodes"`
}

// StationTable maps parent station id to its metadata.
type StationTable map[string]Station
