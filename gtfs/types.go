package gtfs

// Calendar represents a row from calendar.txt: one service id and the
// days of the week it runs on.
type Calendar struct {
	ServiceID string
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
}

// Trip represents a row from trips.txt.
type Trip struct {
	TripID    string
	RouteID   string
	ServiceID string
}

// Stop represents a row from stops.txt.
type Stop struct {
	StopID        string
	ParentStation string
	Name          string
	Lat           float64
	Lng           float64
	HasCoords     bool
}

// StopTime represents a row from stop_times.txt. ArrivalSec is seconds
// since midnight and may exceed 24h for post-midnight service; -1 means
// the timestamp was absent or unparseable.
type StopTime struct {
	TripID     string
	StopID     string
	ArrivalSec int
	Seq        int
}

// Transfer represents a row from transfers.txt. Type 3 (transfer not
// possible) is filtered out by the reader.
type Transfer struct {
	FromStopID string
	ToStopID   string
	MinTimeSec int
}

// Tables bundles everything the reader loaded from one GTFS directory.
type Tables struct {
	Calendar  []Calendar
	Trips     []Trip
	Stops     []Stop
	StopTimes []StopTime
	Transfers []Transfer
}
