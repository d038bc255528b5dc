package transitcore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/micmap/transit-core/planner"
	"github.com/micmap/transit-core/routing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func queryFloat(r *http.Request, name string) (float64, bool) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	return v, err == nil
}

func queryCoords(w http.ResponseWriter, r *http.Request) (fromLat, fromLng, toLat, toLng float64, ok bool) {
	for _, q := range []struct {
		name string
		dst  *float64
	}{
		{"fromLat", &fromLat}, {"fromLng", &fromLng},
		{"toLat", &toLat}, {"toLng", &toLng},
	} {
		v, valid := queryFloat(r, q.name)
		if !valid {
			writeError(w, http.StatusBadRequest, "missing or invalid "+q.name)
			return 0, 0, 0, 0, false
		}
		*q.dst = v
	}
	return fromLat, fromLng, toLat, toLng, true
}

type routesResponse struct {
	Routes []routing.Route `json:"routes"`
	Count  int             `json:"count"`
}

// handleRoutes serves GET /api/routes. An empty result is a valid
// answer, not an error.
func (a *App) handleRoutes(w http.ResponseWriter, r *http.Request) {
	fromLat, fromLng, toLat, toLng, ok := queryCoords(w, r)
	if !ok {
		return
	}
	weekend := r.URL.Query().Get("weekend") == "true"
	limit := 0
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = n
	}

	routes := a.Finder.FindTopRoutes(r.Context(), fromLat, fromLng, toLat, toLng, limit, weekend)
	if a.Realtime != nil {
		a.Realtime.ValidateFirstLeg(r.Context(), a.Bundle, routes, toLat)
	}
	writeJSON(w, http.StatusOK, routesResponse{Routes: routes, Count: len(routes)})
}

// handleWalk serves GET /api/walk, proxying the pedestrian router so
// the frontend never sees the API key.
func (a *App) handleWalk(w http.ResponseWriter, r *http.Request) {
	fromLat, fromLng, toLat, toLng, ok := queryCoords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Walker.Between(r.Context(), fromLat, fromLng, toLat, toLng))
}

// handleArrivals serves GET /api/arrivals?line=L&stopId=L08.
func (a *App) handleArrivals(w http.ResponseWriter, r *http.Request) {
	if a.Realtime == nil {
		writeError(w, http.StatusServiceUnavailable, "realtime feeds are not configured")
		return
	}
	line := r.URL.Query().Get("line")
	stopID := r.URL.Query().Get("stopId")
	if line == "" || stopID == "" {
		writeError(w, http.StatusBadRequest, "line and stopId are required")
		return
	}
	arrivals := a.Realtime.ArrivalsFor(r.Context(), line, stopID)
	writeJSON(w, http.StatusOK, map[string]any{"arrivals": arrivals, "count": len(arrivals)})
}

type planRequest struct {
	Day            string           `json:"day"`
	Origin         planner.Origin   `json:"origin"`
	StartMins      int              `json:"startMins"`
	EndMins        int              `json:"endMins"`
	MinutesPerStop int              `json:"minutesPerStop"`
	MaxCommuteMins int              `json:"maxCommuteMins"`
	MinStops       int              `json:"minStops"`
	MaxStops       int              `json:"maxStops"`
	WalkableMiles  float64          `json:"walkableMiles"`
	Priority       planner.Priority `json:"priority"`
	Anchors        planner.Anchors  `json:"anchors"`
	Events         []planner.Event  `json:"events,omitempty"`
}

type planResponse struct {
	SessionID string             `json:"sessionId"`
	Itinerary *planner.Itinerary `json:"itinerary"`
	Notice    string             `json:"notice,omitempty"`
}

// handlePlan serves POST /api/plan. Candidate events come from the
// request body when provided, otherwise from the event store.
func (a *App) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events := req.Events
	if len(events) == 0 {
		if a.Events == nil {
			writeError(w, http.StatusBadRequest, "no events supplied and no event store configured")
			return
		}
		var err error
		events, err = a.Events.EventsForDay(r.Context(), req.Day)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "loading events: "+err.Error())
			return
		}
	}

	sess, it, err := a.Scheduler.Plan(r.Context(), planner.Request{
		Day:            req.Day,
		Origin:         req.Origin,
		StartMins:      req.StartMins,
		EndMins:        req.EndMins,
		MinutesPerStop: req.MinutesPerStop,
		MaxCommuteMins: req.MaxCommuteMins,
		MinStops:       req.MinStops,
		MaxStops:       req.MaxStops,
		WalkableMiles:  req.WalkableMiles,
		Priority:       req.Priority,
		Anchors:        req.Anchors,
		Events:         events,
	})

	var insufficient *planner.InsufficientResultsError
	switch {
	case err == nil:
		a.storeSession(sess)
		writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it})
	case errors.As(err, &insufficient):
		// Partial plans still render; the notice explains the shortfall.
		a.storeSession(sess)
		writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it, Notice: err.Error()})
	default:
		var anchorErr *planner.AnchorUnreachableError
		if errors.As(err, &anchorErr) {
			writeError(w, http.StatusUnprocessableEntity, anchorErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handlePlanGet serves GET /api/plan/{session}?priority=, switching or
// re-reading a priority mode on an existing session.
func (a *App) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(chi.URLParam(r, "session"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	if p := planner.Priority(r.URL.Query().Get("priority")); p != "" {
		it, err := sess.Itinerary(r.Context(), p)
		if err != nil {
			a.writeEditError(w, err, it, sess)
			return
		}
		writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it})
		return
	}

	it, ok := sess.Active()
	if !ok {
		writeError(w, http.StatusNotFound, "session has no itinerary yet")
		return
	}
	writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it})
}

type insertRequest struct {
	AfterIndex int           `json:"afterIndex"`
	Event      planner.Event `json:"event"`
}

func (a *App) handlePlanInsert(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(chi.URLParam(r, "session"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it, err := sess.InsertStop(r.Context(), req.AfterIndex, req.Event)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it, Notice: it.Warning})
}

type removeRequest struct {
	EventID string `json:"eventId"`
}

func (a *App) handlePlanRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(chi.URLParam(r, "session"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it, err := sess.RemoveStop(r.Context(), req.EventID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it, Notice: it.Warning})
}

func (a *App) handlePlanUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(chi.URLParam(r, "session"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	it, err := sess.Undo()
	if err != nil {
		if errors.Is(err, planner.ErrNoHistory) {
			writeError(w, http.StatusConflict, "nothing to undo")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it})
}

func (a *App) writeEditError(w http.ResponseWriter, err error, it *planner.Itinerary, sess *planner.Session) {
	var insufficient *planner.InsufficientResultsError
	if errors.As(err, &insufficient) && it != nil {
		writeJSON(w, http.StatusOK, planResponse{SessionID: sess.ID, Itinerary: it, Notice: err.Error()})
		return
	}
	var anchorErr *planner.AnchorUnreachableError
	if errors.As(err, &anchorErr) {
		writeError(w, http.StatusUnprocessableEntity, anchorErr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
