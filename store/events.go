// Package store reads the event pool out of a SQLite database. The
// planner treats the pool as read-only input; refresh jobs that write
// it live elsewhere.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/micmap/transit-core/planner"
)

// EventStore wraps the read-only connection to the event pool.
type EventStore struct {
	db *sql.DB
}

// Open connects to the events database at path.
func Open(path string) (*EventStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("opening event store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging event store: %w", err)
	}
	return &EventStore{db: db}, nil
}

func (s *EventStore) Close() error {
	return s.db.Close()
}

// Ping reports database connectivity, for health checks.
func (s *EventStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EventsForDay returns the candidate events for one day of the week,
// ordered by start time. Rows without coordinates are excluded since
// the planner cannot route to them.
func (s *EventStore) EventsForDay(ctx context.Context, day string) ([]planner.Event, error) {
	const query = `
		SELECT id, venue, day, start_mins, lat, lng,
		       cost, requires_advance_signup, neighborhood, borough
		FROM events
		WHERE day = ?
		  AND lat IS NOT NULL AND lng IS NOT NULL
		ORDER BY start_mins, id
	`

	rows, err := s.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("querying events for %s: %w", day, err)
	}
	defer rows.Close()

	var events []planner.Event
	for rows.Next() {
		var ev planner.Event
		var cost sql.NullFloat64
		var signup sql.NullBool
		var neighborhood, borough sql.NullString
		if err := rows.Scan(
			&ev.ID,
			&ev.Venue,
			&ev.Day,
			&ev.StartMins,
			&ev.Lat,
			&ev.Lng,
			&cost,
			&signup,
			&neighborhood,
			&borough,
		); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		ev.Cost = cost.Float64
		ev.RequiresAdvanceSignup = signup.Valid && signup.Bool
		ev.Neighborhood = neighborhood.String
		ev.Borough = borough.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return events, nil
}
