package gtfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadReadsAllTables(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "calendar.txt",
		"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n"+
			"WKD,1,1,1,1,1,0,0\n"+
			"SAT,0,0,0,0,0,1,0\n")
	writeFixture(t, dir, "trips.txt",
		"route_id,service_id,trip_id\n"+
			"1,WKD,t1\n"+
			",WKD,missing-route\n")
	writeFixture(t, dir, "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon,parent_station\n"+
			"101,South Ferry,40.701,-74.013,\n"+
			"101N,South Ferry,40.701,-74.013,101\n"+
			"bad,No Coords,,,101\n")
	writeFixture(t, dir, "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence\n"+
			"t1,06:00:00,06:00:00,101N,1\n"+
			"t1,,,102N,2\n"+
			"t1,25:30:00,25:30:00,103N,3\n")
	writeFixture(t, dir, "transfers.txt",
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time\n"+
			"101,102,2,300\n"+
			"101,103,3,300\n"+
			"102,103,2,\n"+
			"104,104,2,60\n")

	tables, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, tables.Calendar, 2)
	assert.True(t, tables.Calendar[0].Monday)
	assert.False(t, tables.Calendar[0].Saturday)
	assert.True(t, tables.Calendar[1].Saturday)

	// The row without a route id is dropped.
	require.Len(t, tables.Trips, 1)
	assert.Equal(t, "t1", tables.Trips[0].TripID)

	require.Len(t, tables.Stops, 3)
	assert.True(t, tables.Stops[0].HasCoords)
	assert.False(t, tables.Stops[2].HasCoords)
	assert.Equal(t, "101", tables.Stops[1].ParentStation)

	require.Len(t, tables.StopTimes, 3)
	assert.Equal(t, 6*3600, tables.StopTimes[0].ArrivalSec)
	assert.Equal(t, -1, tables.StopTimes[1].ArrivalSec)
	assert.Equal(t, 25*3600+30*60, tables.StopTimes[2].ArrivalSec)

	// Type-3 and self transfers are dropped; a missing minimum time
	// falls back to the default.
	require.Len(t, tables.Transfers, 2)
	assert.Equal(t, 300, tables.Transfers[0].MinTimeSec)
	assert.Equal(t, DefaultTransferSec, tables.Transfers[1].MinTimeSec)
}

func TestLoadToleratesMissingFiles(t *testing.T) {
	tables, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, tables.Trips)
	assert.Empty(t, tables.Stops)
}

func TestParseTime(t *testing.T) {
	assert.Equal(t, 0, ParseTime("00:00:00"))
	assert.Equal(t, 6*3600+15*60+30, ParseTime("06:15:30"))
	assert.Equal(t, 25*3600+30*60, ParseTime("25:30:00"))
	assert.Equal(t, -1, ParseTime(""))
	assert.Equal(t, -1, ParseTime("06:15"))
	assert.Equal(t, -1, ParseTime("aa:bb:cc"))
	assert.Equal(t, -1, ParseTime("06:75:00"))
}
