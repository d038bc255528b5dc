package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE events (
		id TEXT PRIMARY KEY,
		venue TEXT NOT NULL,
		day TEXT NOT NULL,
		start_mins INTEGER NOT NULL,
		lat REAL,
		lng REAL,
		cost REAL,
		requires_advance_signup INTEGER,
		neighborhood TEXT,
		borough TEXT
	)
`

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schema)
	require.NoError(t, err)

	rows := [][]any{
		{"f2", "Late Cellar", "friday", 21 * 60, 40.73, -73.99, 10.0, 1, "East Village", "Manhattan"},
		{"f1", "Early Basement", "friday", 19 * 60, 40.70, -74.00, 0.0, 0, "Fidi", "Manhattan"},
		{"f3", "No Coords Bar", "friday", 20 * 60, nil, nil, nil, nil, nil, nil},
		{"s1", "Saturday Spot", "saturday", 19 * 60, 40.71, -73.95, 5.0, 0, "Williamsburg", "Brooklyn"},
	}
	for _, r := range rows {
		_, err = db.Exec(
			`INSERT INTO events (id, venue, day, start_mins, lat, lng, cost, requires_advance_signup, neighborhood, borough)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}
	return path
}

func TestEventsForDayFiltersAndOrders(t *testing.T) {
	s, err := Open(seedDB(t))
	require.NoError(t, err)
	defer s.Close()

	events, err := s.EventsForDay(context.Background(), "friday")
	require.NoError(t, err)

	// The coordinate-less row and the Saturday row are excluded.
	require.Len(t, events, 2)
	assert.Equal(t, "f1", events[0].ID)
	assert.Equal(t, "f2", events[1].ID)

	assert.Equal(t, "Early Basement", events[0].Venue)
	assert.Equal(t, 19*60, events[0].StartMins)
	assert.InDelta(t, 40.70, events[0].Lat, 1e-9)
	assert.False(t, events[0].RequiresAdvanceSignup)

	assert.True(t, events[1].RequiresAdvanceSignup)
	assert.Equal(t, 10.0, events[1].Cost)
	assert.Equal(t, "East Village", events[1].Neighborhood)
	assert.Equal(t, "Manhattan", events[1].Borough)
}

func TestEventsForDayEmpty(t *testing.T) {
	s, err := Open(seedDB(t))
	require.NoError(t, err)
	defer s.Close()

	events, err := s.EventsForDay(context.Background(), "monday")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "events.db"))
	assert.Error(t, err)
}
