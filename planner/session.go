package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Session holds one planning request's state: the built itinerary per
// priority mode, the shared transit cache, and the undo history for
// interactive edits. Safe for concurrent use.
type Session struct {
	ID string

	mu     sync.Mutex
	pc     *planContext
	routes map[Priority]*Itinerary
	active Priority
	undo   []undoFrame
}

type undoFrame struct {
	priority Priority
	route    *Itinerary
}

func newSession(pc *planContext) *Session {
	return &Session{
		ID:     uuid.NewString(),
		pc:     pc,
		routes: make(map[Priority]*Itinerary),
	}
}

// Itinerary returns the route for a priority mode, building it on
// first request and memoizing it after. Transit times already resolved
// for another mode are reused through the session cache.
func (s *Session) Itinerary(ctx context.Context, priority Priority) (*Itinerary, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if it, ok := s.routes[priority]; ok {
		s.active = priority
		return it, nil
	}

	it, err := s.pc.build(ctx, priority)
	if err != nil {
		// A below-minimum sequence is still a real itinerary: keep it
		// so the caller can render and edit it.
		var insufficient *InsufficientResultsError
		if errors.As(err, &insufficient) && it != nil {
			s.routes[priority] = it
			s.active = priority
		}
		return it, err
	}
	s.routes[priority] = it
	s.active = priority
	return it, nil
}

// Active returns the most recently requested itinerary, or false if
// none has been built.
func (s *Session) Active() (*Itinerary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.routes[s.active]
	return it, ok
}

// InsertStop splices an event into the active itinerary after the
// given index (-1 prepends) and recomputes every downstream leg. A
// timing conflict between newly adjacent stops is reported in the
// itinerary's Warning, not as an error.
func (s *Session) InsertStop(ctx context.Context, afterIndex int, ev Event) (*Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.routes[s.active]
	if !ok {
		return nil, fmt.Errorf("no itinerary to modify")
	}
	for _, e := range it.Sequence {
		if e.Event.ID == ev.ID {
			return nil, fmt.Errorf("event %q is already in the itinerary", ev.Venue)
		}
	}
	if afterIndex < -1 || afterIndex >= len(it.Sequence) {
		return nil, fmt.Errorf("insert position %d out of range", afterIndex)
	}

	s.pushUndo(it)

	next := cloneItinerary(it)
	at := afterIndex + 1
	next.Sequence = append(next.Sequence[:at:at], append([]Entry{{Event: ev, ArriveBy: ev.StartMins}}, next.Sequence[at:]...)...)

	s.recalc(ctx, next)
	next.Warning = s.orderWarning(next)

	s.routes[s.active] = next
	return next, nil
}

// RemoveStop drops an event by id from the active itinerary and
// recomputes the legs around the gap.
func (s *Session) RemoveStop(ctx context.Context, eventID string) (*Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.routes[s.active]
	if !ok {
		return nil, fmt.Errorf("no itinerary to modify")
	}
	idx := -1
	for i, e := range it.Sequence {
		if e.Event.ID == eventID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("event %q not in the itinerary", eventID)
	}

	s.pushUndo(it)

	next := cloneItinerary(it)
	next.Sequence = append(next.Sequence[:idx:idx], next.Sequence[idx+1:]...)

	s.recalc(ctx, next)
	next.Warning = s.orderWarning(next)

	s.routes[s.active] = next
	return next, nil
}

// Undo restores the itinerary as it was before the last edit.
func (s *Session) Undo() (*Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return nil, ErrNoHistory
	}
	frame := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	s.routes[frame.priority] = frame.route
	s.active = frame.priority
	return frame.route, nil
}

// pushUndo snapshots the current itinerary, dropping the oldest frame
// past the depth limit.
func (s *Session) pushUndo(it *Itinerary) {
	s.undo = append(s.undo, undoFrame{priority: s.active, route: cloneItinerary(it)})
	if len(s.undo) > UndoDepth {
		s.undo = s.undo[1:]
	}
}

// recalc rewalks the sequence from the origin and refreshes every
// leg's transit time.
func (s *Session) recalc(ctx context.Context, it *Itinerary) {
	lat, lng := it.Origin.Lat, it.Origin.Lng
	for i := range it.Sequence {
		ev := it.Sequence[i].Event
		it.Sequence[i].TransitFromPrev = s.pc.lookup.between(ctx, lat, lng, ev.Lat, ev.Lng)
		lat, lng = ev.Lat, ev.Lng
	}
}

// orderWarning reports the first pair of adjacent stops that no longer
// fit: leaving the earlier one and riding over does not make the later
// one's start inside the grace window.
func (s *Session) orderWarning(it *Itinerary) string {
	per := s.pc.req.MinutesPerStop
	for i := 1; i < len(it.Sequence); i++ {
		prev := it.Sequence[i-1]
		cur := it.Sequence[i]
		depart := prev.Event.StartMins + per
		arrival := depart + cur.TransitFromPrev.Mins
		if arrival > cur.Event.StartMins+GraceMins {
			return fmt.Sprintf("tight timing: leaving %q at this pace puts you at %q %d mins after it starts",
				prev.Event.Venue, cur.Event.Venue, arrival-cur.Event.StartMins)
		}
	}
	return ""
}

func cloneItinerary(it *Itinerary) *Itinerary {
	out := *it
	out.Sequence = make([]Entry, len(it.Sequence))
	copy(out.Sequence, it.Sequence)
	return &out
}
