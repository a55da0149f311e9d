package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"github.com/huntworks/trailhunt/internal/config"
	"github.com/huntworks/trailhunt/internal/database"
	"github.com/huntworks/trailhunt/internal/events"
	"github.com/huntworks/trailhunt/internal/game"
	"github.com/huntworks/trailhunt/internal/migrations"
	"github.com/huntworks/trailhunt/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Game engine ---
	store := game.NewSQLiteStore(db)
	bus := events.NewBus()
	presence := events.NewPresence(bus, cfg.PresenceTimeout)
	board := game.NewLeaderboard(store, cfg.LeaderboardTTL)
	engine := game.NewEngine(store, bus, board)
	sessions := game.NewSessionRegistry(store, bus, cfg.SessionTTL)

	if err := server.SeedDemo(ctx, logger, store); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	// --- Background jobs ---
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			n, err := sessions.SweepExpired(context.Background())
			if err != nil {
				logger.Error("session sweep failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("expired sessions swept", "count", n)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("scheduling session sweep: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.PresenceTimeout/3),
		gocron.NewTask(presence.CheckTimeouts),
	)
	if err != nil {
		return fmt.Errorf("scheduling presence check: %w", err)
	}

	sched.Start()
	defer sched.Shutdown()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Services{
		Logger:   logger,
		DB:       db,
		Store:    store,
		Engine:   engine,
		Sessions: sessions,
		Board:    board,
		Bus:      bus,
		Presence: presence,
		SPADir:   cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
