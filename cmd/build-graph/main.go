package main

import (
	"flag"
	"log"

	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/gtfs"
)

func main() {
	gtfsDir := flag.String("gtfs", "./gtfs_subway", "directory with the GTFS static tables")
	outDir := flag.String("out", "./data/graph", "output directory for the graph files")
	flag.Parse()

	tables, err := gtfs.Load(*gtfsDir)
	if err != nil {
		log.Fatalf("loading GTFS tables: %v", err)
	}
	log.Printf("loaded %d trips, %d stops, %d stop times, %d transfers",
		len(tables.Trips), len(tables.Stops), len(tables.StopTimes), len(tables.Transfers))

	res := graph.NewBuilder(tables, graph.SuperComplexes).Build()
	log.Printf("built weekday graph with %d nodes, weekend graph with %d nodes, %d stations",
		len(res.Weekday), len(res.Weekend), len(res.Stations))

	if err := graph.Save(*outDir, res); err != nil {
		log.Fatalf("saving graph: %v", err)
	}
	log.Printf("graph written to %s", *outDir)
}
