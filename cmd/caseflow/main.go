package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/activity"
	v1 "github.com/gosuda/caseflow/internal/api/v1"
	"github.com/gosuda/caseflow/internal/api/ws"
	"github.com/gosuda/caseflow/internal/async"
	"github.com/gosuda/caseflow/internal/config"
	"github.com/gosuda/caseflow/internal/events"
	cfslack "github.com/gosuda/caseflow/internal/messenger/slack"
	"github.com/gosuda/caseflow/internal/metrics"
	"github.com/gosuda/caseflow/internal/notify"
	"github.com/gosuda/caseflow/internal/server"
	"github.com/gosuda/caseflow/internal/store/memory"
	"github.com/gosuda/caseflow/internal/store/postgres"
	redisstore "github.com/gosuda/caseflow/internal/store/redis"
	"github.com/gosuda/caseflow/internal/transition"
)

// appStore is what both store backends provide.
type appStore interface {
	v1.DataStore
	Close()
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	// Bootstrap logger so config errors are structured; reconfigured below.
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(cfg.Log.Level)
	if cfg.Log.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()

	// Side effects run on their own pool, detached from request contexts.
	queue := async.NewQueue(cfg.Async.Workers, cfg.Async.QueueSize, cfg.Async.Timeout, m)
	defer queue.Close()

	registry := notify.NewRegistry()
	if cfg.Slack.BotToken != "" {
		registry.Register(cfslack.NewFromToken(cfg.Slack.BotToken))
		log.Info().Msg("Slack notifications enabled")
	}
	dispatcher := notify.NewDispatcher(notify.New(registry, store.MessengerLinks()), queue)

	opts := []transition.Option{transition.WithMetrics(m)}

	var (
		hub    *ws.Hub
		pubsub *redisstore.PubSub
	)
	if cfg.Redis.Addr != "" {
		pubsub, err = redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		// Publish jobs still queued at shutdown need a live client.
		defer func() {
			queue.Close()
			if closeErr := pubsub.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("failed to close redis")
			}
		}()

		hub = ws.NewHub(pubsub)
		opts = append(opts, transition.WithBroadcaster(events.NewBroadcaster(pubsub, queue)))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("push events enabled")
	}

	engine, err := transition.NewEngine(
		store.Tasks(),
		store.Cases(),
		activity.New(store.Activity(), queue),
		dispatcher,
		cfg.Business.Window(),
		opts...,
	)
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, store, engine, hub, m)
	if pubsub != nil {
		srv.AddCheck("redis", pubsub)
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (appStore, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), nil
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
