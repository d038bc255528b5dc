package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	weekdayFile  = "graph-weekday.json"
	weekendFile  = "graph-weekend.json"
	stationsFile = "stations.json"
)

// Save writes the build result to dir as three JSON files.
func Save(dir string, res *BuildResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating graph dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, weekdayFile), res.Weekday); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, weekendFile), res.Weekend); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, stationsFile), res.Stations)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Bundle is the loaded, query-ready form of a saved build: both variant
// graphs, the station table, and a reverse node-to-station index.
type Bundle struct {
	Weekday  Adjacency
	Weekend  Adjacency
	Stations StationTable

	nodeStation map[NodeID]string
}

// LoadBundle reads the three graph files from dir.
func LoadBundle(dir string) (*Bundle, error) {
	b := &Bundle{}
	if err := readJSON(filepath.Join(dir, weekdayFile), &b.Weekday); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, weekendFile), &b.Weekend); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, stationsFile), &b.Stations); err != nil {
		return nil, err
	}
	b.indexNodes()
	return b, nil
}

// NewBundle wraps an in-memory build result without a disk round trip.
func NewBundle(res *BuildResult) *Bundle {
	b := &Bundle{Weekday: res.Weekday, Weekend: res.Weekend, Stations: res.Stations}
	b.indexNodes()
	return b
}

func (b *Bundle) indexNodes() {
	b.nodeStation = make(map[NodeID]string)
	for id, st := range b.Stations {
		for _, n := range st.Nodes {
			b.nodeStation[n] = id
		}
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ForDay selects the variant graph for a weekday flag.
func (b *Bundle) ForDay(weekend bool) Adjacency {
	if weekend {
		return b.Weekend
	}
	return b.Weekday
}

// StationFor resolves the parent station a node belongs to. The second
// return is false for nodes absent from the station table.
func (b *Bundle) StationFor(n NodeID) (string, bool) {
	id, ok := b.nodeStation[n]
	return id, ok
}
