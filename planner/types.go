// Package planner builds ordered night itineraries from a pool of
// candidate events, connecting stops with transit times from the route
// finder. The algorithm is a greedy local-cost minimizer with pinned
// anchors; it never backtracks, so it can miss a globally better
// sequence. That trade is deliberate and keeps planning fast enough
// for interactive use.
package planner

import "github.com/micmap/transit-core/routing"

// Priority selects the scoring mode for the greedy step.
type Priority string

const (
	PriorityLeastTravel Priority = "least_travel"
	PriorityBestTiming  Priority = "best_timing"
	PriorityMostStops   Priority = "most_mics"
)

// Valid reports whether p is one of the three known modes.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLeastTravel, PriorityBestTiming, PriorityMostStops:
		return true
	}
	return false
}

// Event is one candidate stop. The pool arrives already filtered by
// day and domain filters (price, area, signup); the planner only
// checks the time window.
type Event struct {
	ID        string  `json:"id"`
	Venue     string  `json:"venue"`
	Day       string  `json:"day"`
	StartMins int     `json:"startMins"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`

	Cost                  float64 `json:"cost,omitempty"`
	RequiresAdvanceSignup bool    `json:"requiresAdvanceSignup,omitempty"`
	Neighborhood          string  `json:"neighborhood,omitempty"`
	Borough               string  `json:"borough,omitempty"`
}

// Origin is where the night starts.
type Origin struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Anchors pins up to three events by id to fixed roles.
type Anchors struct {
	StartID string `json:"startId,omitempty"`
	MustID  string `json:"mustId,omitempty"`
	EndID   string `json:"endId,omitempty"`
}

// Role marks how an entry got into the sequence.
type Role string

const (
	RoleFree  Role = ""
	RoleStart Role = "start"
	RoleMust  Role = "must"
	RoleEnd   Role = "end"
)

// TransitKind labels how a leg's time was obtained.
type TransitKind string

const (
	TransitWalk     TransitKind = "walk"
	TransitRoute    TransitKind = "transit"
	TransitEstimate TransitKind = "estimate"
)

// TransitInfo is the resolved leg between consecutive stops.
type TransitInfo struct {
	Mins      int            `json:"mins"`
	Kind      TransitKind    `json:"type"`
	Route     *routing.Route `json:"route,omitempty"`
	Estimated bool           `json:"estimated"`
}

// Entry is one placed stop.
type Entry struct {
	Event           Event       `json:"event"`
	ArriveBy        int         `json:"arriveBy"`
	TransitFromPrev TransitInfo `json:"transitFromPrev"`
	Role            Role        `json:"role,omitempty"`
}

// DepartBy suggests when to leave the previous stop: the transit time
// plus an early-arrival cushion ahead of the event's start.
func (e Entry) DepartBy() int {
	d := e.ArriveBy - e.TransitFromPrev.Mins - EarlyArrivalMins
	if d < 0 {
		d = 0
	}
	return d
}

// Itinerary is one built sequence for a priority mode.
type Itinerary struct {
	Priority Priority `json:"priority"`
	Origin   Origin   `json:"origin"`
	Sequence []Entry  `json:"sequence"`
	// Warning carries a non-fatal ordering conflict after an edit.
	Warning string `json:"warning,omitempty"`
}

// Estimated reports whether any leg uses a fallback estimate.
func (it *Itinerary) Estimated() bool {
	for _, e := range it.Sequence {
		if e.TransitFromPrev.Estimated {
			return true
		}
	}
	return false
}

// Request is one planning call.
type Request struct {
	Day            string   `json:"day"`
	Origin         Origin   `json:"origin"`
	StartMins      int      `json:"startMins"`
	EndMins        int      `json:"endMins"`
	MinutesPerStop int      `json:"minutesPerStop"`
	MaxCommuteMins int      `json:"maxCommuteMins"`
	MinStops       int      `json:"minStops"`
	MaxStops       int      `json:"maxStops"`
	WalkableMiles  float64  `json:"walkableMiles"`
	Priority       Priority `json:"priority"`
	Anchors        Anchors  `json:"anchors"`
	Events         []Event  `json:"events"`
}

func (r *Request) fillDefaults() {
	if r.MinutesPerStop <= 0 {
		r.MinutesPerStop = DefaultMinutesPerStop
	}
	if r.MaxCommuteMins <= 0 {
		r.MaxCommuteMins = NoCommuteLimit
	}
	if r.MinStops <= 0 {
		r.MinStops = 1
	}
	if r.MaxStops <= 0 {
		r.MaxStops = DefaultMaxStops
	}
	if r.WalkableMiles <= 0 {
		r.WalkableMiles = DefaultWalkableMiles
	}
	if r.EndMins <= 0 {
		r.EndMins = EndOfDayMins
	}
	if !r.Priority.Valid() {
		r.Priority = PriorityMostStops
	}
}

// weekend reports whether the request's day uses the weekend graph.
func (r *Request) weekend() bool {
	return r.Day == "saturday" || r.Day == "sunday"
}

const (
	// MinGapMins is the soonest a next stop may start after the clock.
	MinGapMins = 20
	// GraceMins tolerates arriving this late to a stop's start.
	GraceMins = 30
	// EarlyArrivalMins is the cushion ahead of an event's start used
	// when suggesting departure times.
	EarlyArrivalMins = 15
	// DefaultMinutesPerStop advances the clock past each placed stop.
	DefaultMinutesPerStop = 60
	// NoCommuteLimit disables the per-leg commute cap.
	NoCommuteLimit = 999
	// EndOfDayMins is the last minute of a day window.
	EndOfDayMins = 1439

	DefaultMaxStops      = 99
	DefaultWalkableMiles = 0.5

	// PrefetchBatchSize bounds concurrent transit lookups per batch.
	PrefetchBatchSize = 10
	// TransitCacheSize bounds the per-session transit cache.
	TransitCacheSize = 200
	// UndoDepth bounds the per-session edit history.
	UndoDepth = 5
)
