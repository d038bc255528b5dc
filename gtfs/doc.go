// Package gtfs reads the static GTFS tables the graph builder consumes:
// calendar, trips, stops, stop_times and transfers. Files are plain CSV
// in a directory. A missing file is a warning, not an error, and
// malformed rows are skipped individually so one bad record never sinks
// a build.
package gtfs
