// Package transitcore wires the transit graph, route finder, walking
// estimator, realtime feeds, and itinerary planner behind an HTTP API.
package transitcore

import (
	"sync"

	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/planner"
	"github.com/micmap/transit-core/realtime"
	"github.com/micmap/transit-core/routing"
	"github.com/micmap/transit-core/store"
	"github.com/micmap/transit-core/walking"
)

// App holds the long-lived services behind the HTTP handlers. Realtime
// and Events are optional; handlers degrade when they are nil.
type App struct {
	Bundle    *graph.Bundle
	Finder    *routing.Finder
	Walker    *walking.Estimator
	Scheduler *planner.Scheduler
	Realtime  *realtime.Client
	Events    *store.EventStore

	mu       sync.Mutex
	sessions map[string]*planner.Session
}

func NewApp(bundle *graph.Bundle, finder *routing.Finder, walker *walking.Estimator, sched *planner.Scheduler) *App {
	return &App{
		Bundle:    bundle,
		Finder:    finder,
		Walker:    walker,
		Scheduler: sched,
		sessions:  make(map[string]*planner.Session),
	}
}

func (a *App) storeSession(s *planner.Session) {
	a.mu.Lock()
	a.sessions[s.ID] = s
	a.mu.Unlock()
}

func (a *App) session(id string) (*planner.Session, bool) {
	a.mu.Lock()
	s, ok := a.sessions[id]
	a.mu.Unlock()
	return s, ok
}
