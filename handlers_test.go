package transitcore

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/planner"
	"github.com/micmap/transit-core/routing"
	"github.com/micmap/transit-core/walking"
)

// Coordinates on one meridian, about a mile per station.
const (
	latA = 40.700
	latB = 40.7155
	latC = 40.731
	lng  = -74.000
)

func node(stop, line string) graph.NodeID {
	return graph.NodeID{Stop: stop, Line: line}
}

func testBundle() *graph.Bundle {
	adj := graph.Adjacency{
		node("A", "1"): {{To: node("B", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"}},
		node("B", "1"): {
			{To: node("A", "1"), Time: 300, Kind: graph.EdgeRide, Line: "1"},
			{To: node("B", "2"), Time: 120, Kind: graph.EdgeTransfer},
		},
		node("B", "2"): {
			{To: node("C", "2"), Time: 240, Kind: graph.EdgeRide, Line: "2"},
			{To: node("B", "1"), Time: 120, Kind: graph.EdgeTransfer},
		},
		node("C", "2"): {{To: node("B", "2"), Time: 240, Kind: graph.EdgeRide, Line: "2"}},
	}
	return graph.NewBundle(&graph.BuildResult{
		Weekday: adj,
		Weekend: adj,
		Stations: graph.StationTable{
			"A": {Name: "Alpha", Lat: latA, Lng: lng, Nodes: []graph.NodeID{node("A", "1")}},
			"B": {Name: "Bravo", Lat: latB, Lng: lng, Nodes: []graph.NodeID{node("B", "1"), node("B", "2")}},
			"C": {Name: "Charlie", Lat: latC, Lng: lng, Nodes: []graph.NodeID{node("C", "2")}},
		},
	})
}

func newTestApp() *App {
	bundle := testBundle()
	walker := walking.NewEstimator(walking.Config{})
	finder := routing.NewFinder(bundle, walker, routing.Config{})
	sched := planner.NewScheduler(planner.FinderSource{Finder: finder})
	return NewApp(bundle, finder, walker, sched)
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestApp().Router()

	var resp healthResponse
	rec := doJSON(t, h, http.MethodGet, "/health", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Stations)
	assert.False(t, resp.Realtime)
}

func TestRoutesEndpoint(t *testing.T) {
	h := newTestApp().Router()

	var resp routesResponse
	rec := doJSON(t, h, http.MethodGet,
		"/api/routes?fromLat=40.700&fromLng=-74.000&toLat=40.731&toLng=-74.000&limit=3", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "1→2", resp.Routes[0].Signature)
	assert.Equal(t, 11, resp.Routes[0].TransitMinutes)
}

func TestRoutesEndpointBadParams(t *testing.T) {
	h := newTestApp().Router()

	rec := doJSON(t, h, http.MethodGet, "/api/routes?fromLat=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalkEndpoint(t *testing.T) {
	h := newTestApp().Router()

	var est walking.Estimate
	rec := doJSON(t, h, http.MethodGet,
		"/api/walk?fromLat=40.700&fromLng=-74.000&toLat=40.7155&toLng=-74.000", nil, &est)
	require.Equal(t, http.StatusOK, rec.Code)
	// No router key configured: the grid fallback answers.
	assert.True(t, est.Estimated)
	assert.Greater(t, est.Seconds, 0)
}

func TestArrivalsEndpointUnconfigured(t *testing.T) {
	h := newTestApp().Router()

	rec := doJSON(t, h, http.MethodGet, "/api/arrivals?line=L&stopId=L08", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func planBody() planRequest {
	return planRequest{
		Day:       "friday",
		Origin:    planner.Origin{Name: "Home", Lat: latA, Lng: lng},
		StartMins: 18 * 60,
		Priority:  planner.PriorityMostStops,
		Events: []planner.Event{
			{ID: "e1", Venue: "Bravo Basement", Day: "friday", StartMins: 19 * 60, Lat: latB, Lng: lng},
			{ID: "e2", Venue: "Charlie Cellar", Day: "friday", StartMins: 20*60 + 30, Lat: latC, Lng: lng},
		},
	}
}

func TestPlanEndpointRoundTrip(t *testing.T) {
	app := newTestApp()
	h := app.Router()

	var resp planResponse
	rec := doJSON(t, h, http.MethodPost, "/api/plan", planBody(), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.Itinerary)
	require.Len(t, resp.Itinerary.Sequence, 2)
	assert.Equal(t, "e1", resp.Itinerary.Sequence[0].Event.ID)

	// Switch priority on the stored session.
	var other planResponse
	rec = doJSON(t, h, http.MethodGet, "/api/plan/"+resp.SessionID+"?priority=least_travel", nil, &other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, planner.PriorityLeastTravel, other.Itinerary.Priority)

	// Nothing has been edited yet.
	rec = doJSON(t, h, http.MethodPost, "/api/plan/"+resp.SessionID+"/undo", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlanEndpointInsertRemove(t *testing.T) {
	app := newTestApp()
	h := app.Router()

	var resp planResponse
	rec := doJSON(t, h, http.MethodPost, "/api/plan", planBody(), &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	extra := planner.Event{ID: "x1", Venue: "Extra", Day: "friday", StartMins: 22 * 60, Lat: latC, Lng: lng}
	var edited planResponse
	rec = doJSON(t, h, http.MethodPost, "/api/plan/"+resp.SessionID+"/insert",
		insertRequest{AfterIndex: 1, Event: extra}, &edited)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, edited.Itinerary.Sequence, 3)

	rec = doJSON(t, h, http.MethodPost, "/api/plan/"+resp.SessionID+"/remove",
		removeRequest{EventID: "x1"}, &edited)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, edited.Itinerary.Sequence, 2)
}

func TestPlanEndpointUnknownSession(t *testing.T) {
	h := newTestApp().Router()

	rec := doJSON(t, h, http.MethodPost, "/api/plan/nope/undo", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanEndpointInfeasibleAnchor(t *testing.T) {
	h := newTestApp().Router()

	body := planBody()
	body.MaxCommuteMins = 5
	body.Anchors = planner.Anchors{StartID: "e2"}

	rec := doJSON(t, h, http.MethodPost, "/api/plan", body, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// Guard against losing request cancellation on the plan path.
func TestPlanEndpointHonorsContext(t *testing.T) {
	h := newTestApp().Router()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(planBody()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/plan", &buf).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
