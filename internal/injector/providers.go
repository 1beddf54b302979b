package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/hazards/internal/config"
	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics/world"
	"github.com/zeusync/hazards/internal/server"
	"github.com/zeusync/hazards/internal/sim"
)

// App is everything the CLI needs to run a scenario.
type App struct {
	Config *config.Config
	Logger *log.Logger
	World  *world.World
	Events *bus.Queue
	Sim    *sim.Simulation
	Feed   *server.Feed
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideWorld,
	ProvideQueue,
	ProvideRegistry,
	ProvideSimulation,
	ProvideFeed,
)

func ProvideLogger(level log.Level) *log.Logger {
	if level == log.LevelDebug {
		return log.NewDevelopment()
	}
	return log.New(level)
}

func ProvideWorld() *world.World {
	return world.New(world.DefaultCellSize)
}

// ProvideQueue builds the event queue with delivery failures logged, which also
// turns on the queue metrics served on /stats.
func ProvideQueue(logger *log.Logger) *bus.Queue {
	q := bus.New()
	q.AddObserver(bus.NewLogObserver(logger.With(log.String("component", "events"))))
	return q
}

func ProvideRegistry(cfg *config.Config) (*config.Registry, error) {
	return cfg.Registry()
}

func ProvideSimulation(w *world.World, reg *config.Registry, q *bus.Queue, logger *log.Logger) *sim.Simulation {
	return sim.New(w, reg, q, logger)
}

func ProvideFeed(cfg server.FeedConfig, q *bus.Queue, logger *log.Logger) (*server.Feed, error) {
	feed := server.NewFeed(cfg, logger.With(log.String("component", "feed")))
	if _, err := feed.Attach(q); err != nil {
		return nil, err
	}
	return feed, nil
}
