package main

import (
	"log"
	"time"

	lib "github.com/micmap/transit-core"
	"github.com/micmap/transit-core/config"
	"github.com/micmap/transit-core/graph"
	"github.com/micmap/transit-core/planner"
	"github.com/micmap/transit-core/realtime"
	"github.com/micmap/transit-core/routing"
	"github.com/micmap/transit-core/store"
	"github.com/micmap/transit-core/walking"
)

func main() {
	lib.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg := config.Config

	bundle, err := graph.LoadBundle(cfg.Data.GraphDir)
	if err != nil {
		log.Fatalf("loading graph bundle: %v", err)
	}
	log.Printf("graph loaded: %d stations", len(bundle.Stations))

	walker := walking.NewEstimator(walking.Config{
		APIKey:    cfg.Walking.APIKey,
		BaseURL:   cfg.Walking.BaseURL,
		Timeout:   time.Duration(cfg.Walking.TimeoutMS) * time.Millisecond,
		CacheSize: cfg.Walking.CacheSize,
	})
	finder := routing.NewFinder(bundle, walker, routing.Config{
		OriginRadiusMiles: cfg.Routing.OriginRadiusMiles,
		DestRadiusMiles:   cfg.Routing.DestRadiusMiles,
	})
	sched := planner.NewScheduler(planner.FinderSource{Finder: finder})

	app := lib.NewApp(bundle, finder, walker, sched)

	if len(cfg.Realtime.Feeds) > 0 {
		app.Realtime = realtime.NewClient(cfg.Realtime.Feeds,
			time.Duration(cfg.Realtime.TimeoutMS)*time.Millisecond)
		log.Printf("realtime feeds configured for %d lines", len(cfg.Realtime.Feeds))
	}
	if cfg.Data.EventsDB != "" {
		events, err := store.Open(cfg.Data.EventsDB)
		if err != nil {
			log.Fatalf("opening event store: %v", err)
		}
		defer events.Close()
		app.Events = events
		log.Printf("event store connected at %s", cfg.Data.EventsDB)
	}

	lib.StartServer(app)
	lib.HandleGracefulShutdown()
}
