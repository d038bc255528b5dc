package gtfs

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads the five static tables from dir. A missing file logs a
// warning and leaves the corresponding slice empty; the caller decides
// whether a partial snapshot is usable.
func Load(dir string) (*Tables, error) {
	t := &Tables{}

	readTable(dir, "calendar.txt", func(row record) {
		if row.get("service_id") == "" {
			return
		}
		t.Calendar = append(t.Calendar, Calendar{
			ServiceID: row.get("service_id"),
			Monday:    row.get("monday") == "1",
			Tuesday:   row.get("tuesday") == "1",
			Wednesday: row.get("wednesday") == "1",
			Thursday:  row.get("thursday") == "1",
			Friday:    row.get("friday") == "1",
			Saturday:  row.get("saturday") == "1",
			Sunday:    row.get("sunday") == "1",
		})
	})

	readTable(dir, "trips.txt", func(row record) {
		if row.get("trip_id") == "" || row.get("route_id") == "" {
			return
		}
		t.Trips = append(t.Trips, Trip{
			TripID:    row.get("trip_id"),
			RouteID:   row.get("route_id"),
			ServiceID: row.get("service_id"),
		})
	})

	readTable(dir, "stops.txt", func(row record) {
		if row.get("stop_id") == "" {
			return
		}
		lat, errLat := strconv.ParseFloat(row.get("stop_lat"), 64)
		lng, errLng := strconv.ParseFloat(row.get("stop_lon"), 64)
		t.Stops = append(t.Stops, Stop{
			StopID:        row.get("stop_id"),
			ParentStation: row.get("parent_station"),
			Name:          row.get("stop_name"),
			Lat:           lat,
			Lng:           lng,
			HasCoords:     errLat == nil && errLng == nil,
		})
	})

	readTable(dir, "stop_times.txt", func(row record) {
		if row.get("trip_id") == "" || row.get("stop_id") == "" {
			return
		}
		seq, err := strconv.Atoi(row.get("stop_sequence"))
		if err != nil {
			return
		}
		t.StopTimes = append(t.StopTimes, StopTime{
			TripID:     row.get("trip_id"),
			StopID:     row.get("stop_id"),
			ArrivalSec: ParseTime(row.get("arrival_time")),
			Seq:        seq,
		})
	})

	readTable(dir, "transfers.txt", func(row record) {
		from := row.get("from_stop_id")
		to := row.get("to_stop_id")
		// transfer_type 3 means the transfer is not possible
		if from == "" || to == "" || from == to || row.get("transfer_type") == "3" {
			return
		}
		minTime, err := strconv.Atoi(row.get("min_transfer_time"))
		if err != nil || minTime <= 0 {
			minTime = DefaultTransferSec
		}
		t.Transfers = append(t.Transfers, Transfer{
			FromStopID: from,
			ToStopID:   to,
			MinTimeSec: minTime,
		})
	})

	log.Printf("GTFS loaded: %d services, %d trips, %d stops, %d stop_times, %d transfers",
		len(t.Calendar), len(t.Trips), len(t.Stops), len(t.StopTimes), len(t.Transfers))

	return t, nil
}

// DefaultTransferSec is used when a transfer row carries no usable
// minimum time.
const DefaultTransferSec = 180

type record struct {
	idx  map[string]int
	cols []string
}

func (r record) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.cols) {
		return ""
	}
	return strings.TrimSpace(r.cols[i])
}

func readTable(dir, name string, rowFn func(record)) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Warning: %s not found, continuing without it", name)
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		log.Printf("Warning: failed to read %s header: %v", name, err)
		return
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	skipped := 0
	for {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rowFn(record{idx: idx, cols: cols})
	}
	if skipped > 0 {
		log.Printf("Warning: %s: skipped %d malformed rows", name, skipped)
	}
}
