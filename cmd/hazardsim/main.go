package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/hazards/internal/config"
	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/injector"
	"github.com/zeusync/hazards/internal/server"
	"github.com/zeusync/hazards/internal/sim"
)

// report is served on /stats.
type report struct {
	Sim    *sim.Stats         `json:"sim"`
	Events bus.Metrics        `json:"events"`
	Feed   server.FeedMetrics `json:"feed"`
}

func main() {
	var (
		configPath = flag.String("config", "", "archetype/scenario file (.yaml or .json)")
		ticks      = flag.Int("ticks", 0, "run this many steps as fast as possible and exit; 0 runs in real time")
		rate       = flag.Int("rate", 60, "steps per second")
		addr       = flag.String("addr", "", "serve the websocket event feed on this address, e.g. :8080")
		token      = flag.String("token", "", "token required by feed clients")
		level      = flag.String("log-level", "info", "debug, info, warn or error")
		debug      = flag.Bool("debug", false, "development logging at debug level")
	)
	flag.Parse()

	lvl := log.ParseLevel(*level)
	if *debug {
		lvl = log.LevelDebug
	}

	if err := run(*configPath, *ticks, *rate, *addr, *token, lvl); err != nil {
		fmt.Fprintln(os.Stderr, "hazardsim:", err)
		os.Exit(1)
	}
}

func run(configPath string, ticks, rate int, addr, token string, level log.Level) error {
	if rate <= 0 {
		return sim.ErrInvalidTickRate
	}

	cfg := &config.Config{}
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
	}

	feedCfg := server.DefaultFeedConfig()
	feedCfg.Auth = server.TokenAuth{Token: token}

	app, err := injector.InitializeApp(cfg, level, feedCfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()
	defer app.Sim.Close()

	if err := cfg.Populate(app.Sim, app.World, app.Logger); err != nil {
		return err
	}
	app.Logger.Info("scenario loaded",
		log.Int("bodies", len(cfg.Bodies)),
		log.Int("spawns", len(cfg.Spawns)),
		log.Int("hazards", len(app.Sim.Hazards())),
	)

	if ticks > 0 {
		return runHeadless(app, ticks, rate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var latest atomic.Pointer[sim.Stats]
	app.Sim.OnStep(func(st sim.Stats) { latest.Store(&st) })

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Sim.Run(ctx, rate)
	})
	if addr != "" {
		stats := func() any {
			return report{
				Sim:    latest.Load(),
				Events: app.Events.GetMetrics(),
				Feed:   app.Feed.Metrics(),
			}
		}
		srv, err := server.NewHTTPServer(addr, app.Feed, stats, app.Logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return srv.ListenAndServe(ctx)
		})
	}

	err = g.Wait()
	summarize(app.Logger, app.Sim.Stats())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runHeadless(app *injector.App, ticks, rate int) error {
	dt := (time.Second / time.Duration(rate)).Seconds()
	for range ticks {
		if err := app.Sim.Step(dt); err != nil {
			app.Logger.Warn("event delivery failed", log.Error(err))
		}
	}
	summarize(app.Logger, app.Sim.Stats())
	return nil
}

func summarize(logger log.Log, st sim.Stats) {
	logger.Info("simulation finished",
		log.Uint64("steps", st.Step),
		log.Duration("elapsed", st.Elapsed),
		log.Int("live", st.Live),
		log.Int("pooled", st.Pooled),
		log.Uint64("spawned", st.Spawned),
		log.Uint64("reused", st.Reused),
		log.Uint64("destroyed", st.Destroyed),
	)
}
