package transitcore

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Stations  int    `json:"stations"`
	EventsDB  string `json:"eventsDb"`
	Realtime  bool   `json:"realtime"`
	Timestamp string `json:"timestamp"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Stations:  len(a.Bundle.Stations),
		EventsDB:  "not configured",
		Realtime:  a.Realtime != nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if a.Events != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Events.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.EventsDB = "disconnected"
			status = http.StatusServiceUnavailable
		} else {
			resp.EventsDB = "connected"
		}
	}
	writeJSON(w, status, resp)
}
