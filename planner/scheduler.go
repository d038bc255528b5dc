package planner

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Scheduler plans itineraries against one transit source. It is
// stateless; all per-plan state lives in the Session it returns.
type Scheduler struct {
	source    RouteSource
	batchSize int
}

func NewScheduler(source RouteSource) *Scheduler {
	return &Scheduler{source: source, batchSize: PrefetchBatchSize}
}

// Plan filters the pool, pre-fetches origin transit times in batches,
// and builds the itinerary for the requested priority. The returned
// Session answers the other priority modes and interactive edits.
//
// A sequence shorter than the requested minimum comes back with both
// the partial itinerary and an InsufficientResultsError so the caller
// can still render it. Cancellation between pre-fetch batches returns
// ctx.Err() and no session.
func (s *Scheduler) Plan(ctx context.Context, req Request) (*Session, *Itinerary, error) {
	req.fillDefaults()

	eligible := make([]Event, 0, len(req.Events))
	for _, ev := range req.Events {
		if req.Day != "" && ev.Day != req.Day {
			continue
		}
		if ev.StartMins < req.StartMins || ev.StartMins > req.EndMins {
			continue
		}
		eligible = append(eligible, ev)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].StartMins < eligible[j].StartMins
	})

	lookup := newTransitLookup(s.source, req.WalkableMiles, req.weekend())

	prefetched, err := s.prefetch(ctx, req.Origin, eligible, lookup)
	if err != nil {
		return nil, nil, err
	}

	pc := &planContext{
		req:        req,
		eligible:   eligible,
		prefetched: prefetched,
		lookup:     lookup,
	}
	if err := pc.resolveAnchors(); err != nil {
		return nil, nil, err
	}

	sess := newSession(pc)
	it, err := sess.Itinerary(ctx, req.Priority)
	if err != nil {
		if _, ok := err.(*InsufficientResultsError); ok {
			return sess, it, err
		}
		return nil, nil, err
	}
	return sess, it, nil
}

// prefetch resolves origin-to-event transit for the whole pool,
// batchSize lookups at a time, checking for cancellation between
// batches. Results from a batch in flight when the context dies are
// discarded with the rest of the plan.
func (s *Scheduler) prefetch(ctx context.Context, origin Origin, eligible []Event, lookup *transitLookup) (map[string]TransitInfo, error) {
	out := make(map[string]TransitInfo, len(eligible))
	var mu sync.Mutex

	for i := 0; i < len(eligible); i += s.batchSize {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("planning cancelled: %w", ctx.Err())
		default:
		}

		end := i + s.batchSize
		if end > len(eligible) {
			end = len(eligible)
		}

		var wg sync.WaitGroup
		for _, ev := range eligible[i:end] {
			wg.Add(1)
			go func(ev Event) {
				defer wg.Done()
				info := lookup.between(ctx, origin.Lat, origin.Lng, ev.Lat, ev.Lng)
				mu.Lock()
				out[ev.ID] = info
				mu.Unlock()
			}(ev)
		}
		wg.Wait()
	}
	return out, nil
}

// planContext is the immutable input a session builds routes from.
type planContext struct {
	req        Request
	eligible   []Event
	prefetched map[string]TransitInfo
	lookup     *transitLookup

	anchorStart *Event
	anchorMust  *Event
	anchorEnd   *Event
}

func (pc *planContext) resolveAnchors() error {
	find := func(id string, role Role) (*Event, error) {
		if id == "" {
			return nil, nil
		}
		for i := range pc.eligible {
			if pc.eligible[i].ID == id {
				return &pc.eligible[i], nil
			}
		}
		return nil, &AnchorUnreachableError{
			Role:   role,
			Venue:  id,
			Reason: "not available with the current filters and time window",
		}
	}

	var err error
	if pc.anchorStart, err = find(pc.req.Anchors.StartID, RoleStart); err != nil {
		return err
	}
	if pc.anchorMust, err = find(pc.req.Anchors.MustID, RoleMust); err != nil {
		return err
	}
	if pc.anchorEnd, err = find(pc.req.Anchors.EndID, RoleEnd); err != nil {
		return err
	}
	return nil
}

// transitFrom uses the pre-fetched value while still at the origin and
// the cached lookup everywhere else.
func (pc *planContext) transitFrom(ctx context.Context, atOrigin bool, fromLat, fromLng float64, ev Event) TransitInfo {
	if atOrigin {
		if info, ok := pc.prefetched[ev.ID]; ok {
			return info
		}
	}
	return pc.lookup.between(ctx, fromLat, fromLng, ev.Lat, ev.Lng)
}

// build runs the greedy algorithm for one priority mode.
func (pc *planContext) build(ctx context.Context, priority Priority) (*Itinerary, error) {
	req := pc.req
	it := &Itinerary{Priority: priority, Origin: req.Origin}

	curLat, curLng := req.Origin.Lat, req.Origin.Lng
	clock := req.StartMins
	atOrigin := true

	pool := make([]Event, 0, len(pc.eligible))
	for _, ev := range pc.eligible {
		if pc.isAnchor(ev.ID) {
			continue
		}
		pool = append(pool, ev)
	}

	advance := func(ev Event) {
		curLat, curLng = ev.Lat, ev.Lng
		clock = ev.StartMins + req.MinutesPerStop
		atOrigin = false
	}

	// Phase 1: the pinned start.
	if a := pc.anchorStart; a != nil {
		info := pc.transitFrom(ctx, true, curLat, curLng, *a)
		if req.MaxCommuteMins < NoCommuteLimit && info.Mins > req.MaxCommuteMins {
			return nil, &AnchorUnreachableError{
				Role: RoleStart, Venue: a.Venue,
				TravelMins: info.Mins, CapMins: req.MaxCommuteMins,
			}
		}
		it.Sequence = append(it.Sequence, Entry{Event: *a, ArriveBy: a.StartMins, TransitFromPrev: info, Role: RoleStart})
		advance(*a)
	}

	// Phase 2: greedy extension, splicing the must-visit in when its
	// timing lines up.
	anchorCount := 0
	for _, a := range []*Event{pc.anchorStart, pc.anchorMust, pc.anchorEnd} {
		if a != nil {
			anchorCount++
		}
	}
	targetMax := req.MaxStops - anchorCount
	if targetMax < 1 {
		targetMax = 1
	}
	mustInserted := false

	limit := func() int {
		n := targetMax
		if pc.anchorStart != nil {
			n++
		}
		if mustInserted {
			n++
		}
		return n
	}

	for len(it.Sequence) < limit() && len(pool) > 0 {
		if a := pc.anchorMust; a != nil && !mustInserted && a.StartMins >= clock+MinGapMins {
			info := pc.transitFrom(ctx, atOrigin, curLat, curLng, *a)
			arrival := clock + info.Mins

			var nextPool *Event
			for i := range pool {
				if pool[i].StartMins >= clock+MinGapMins {
					nextPool = &pool[i]
					break
				}
			}
			shouldInsert := nextPool == nil ||
				a.StartMins <= nextPool.StartMins ||
				arrival <= a.StartMins+GraceMins

			if shouldInsert && arrival <= a.StartMins+GraceMins && withinCommute(req, info.Mins) {
				it.Sequence = append(it.Sequence, Entry{Event: *a, ArriveBy: a.StartMins, TransitFromPrev: info, Role: RoleMust})
				advance(*a)
				mustInserted = true
				continue
			}
		}

		var best *Event
		var bestInfo TransitInfo
		bestScore := 0.0
		found := false

		for i := range pool {
			ev := pool[i]
			if ev.StartMins < clock+MinGapMins || ev.StartMins > req.EndMins {
				continue
			}
			if pc.anchorMust != nil && !mustInserted && ev.StartMins > pc.anchorMust.StartMins {
				continue
			}

			info := pc.transitFrom(ctx, atOrigin, curLat, curLng, ev)
			if !withinCommute(req, info.Mins) {
				continue
			}
			arrival := clock + info.Mins
			if arrival > ev.StartMins+GraceMins {
				continue
			}

			sc := score(priority, info.Mins, arrival, ev.StartMins, req.StartMins)
			if !found || sc < bestScore {
				found = true
				bestScore = sc
				best = &pool[i]
				bestInfo = info
			}
		}

		if !found {
			break
		}

		chosen := *best
		it.Sequence = append(it.Sequence, Entry{Event: chosen, ArriveBy: chosen.StartMins, TransitFromPrev: bestInfo})
		advance(chosen)
		pool = removeEvent(pool, chosen.ID)
	}

	// The must-visit did not splice in naturally; force it or fail.
	if a := pc.anchorMust; a != nil && !mustInserted {
		info := pc.transitFrom(ctx, atOrigin, curLat, curLng, *a)
		arrival := clock + info.Mins
		if arrival > a.StartMins+GraceMins || !withinCommute(req, info.Mins) {
			return nil, &AnchorUnreachableError{
				Role: RoleMust, Venue: a.Venue,
				Reason: "starts too soon after your previous stop; start earlier or unpin it",
			}
		}
		it.Sequence = append(it.Sequence, Entry{Event: *a, ArriveBy: a.StartMins, TransitFromPrev: info, Role: RoleMust})
		advance(*a)
	}

	// Phase 3: the pinned end.
	if a := pc.anchorEnd; a != nil {
		if a.StartMins < clock+MinGapMins {
			return nil, &AnchorUnreachableError{
				Role: RoleEnd, Venue: a.Venue,
				Reason: "starts before you could leave your previous stop; shorten the plan or pick a later final venue",
			}
		}
		info := pc.transitFrom(ctx, atOrigin, curLat, curLng, *a)
		arrival := clock + info.Mins
		if arrival > a.StartMins+GraceMins || !withinCommute(req, info.Mins) {
			return nil, &AnchorUnreachableError{
				Role: RoleEnd, Venue: a.Venue,
				Reason: "cannot be reached in time from your previous stop; extend your window or pick an earlier final venue",
			}
		}
		it.Sequence = append(it.Sequence, Entry{Event: *a, ArriveBy: a.StartMins, TransitFromPrev: info, Role: RoleEnd})
	}

	if len(it.Sequence) > req.MaxStops {
		it.Sequence = it.Sequence[:req.MaxStops]
	}
	if len(it.Sequence) < req.MinStops {
		return it, &InsufficientResultsError{Found: len(it.Sequence), Min: req.MinStops}
	}
	return it, nil
}

func (pc *planContext) isAnchor(id string) bool {
	for _, a := range []*Event{pc.anchorStart, pc.anchorMust, pc.anchorEnd} {
		if a != nil && a.ID == id {
			return true
		}
	}
	return false
}

func withinCommute(req Request, mins int) bool {
	return req.MaxCommuteMins >= NoCommuteLimit || mins <= req.MaxCommuteMins
}

func removeEvent(pool []Event, id string) []Event {
	out := pool[:0]
	for _, ev := range pool {
		if ev.ID != id {
			out = append(out, ev)
		}
	}
	return out
}
