// Package main runs the analysis service:
// - HTTP API (analysis, snapshot, stats, spin ingestion, metrics)
// - Nightly precompute of daily streak maxima (cron)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"roulette-lab/internal/analysis"
	"roulette-lab/internal/api"
	"roulette-lab/internal/config"
	"roulette-lab/internal/logging"
	"roulette-lab/internal/observability"
	"roulette-lab/internal/scheduler"
	"roulette-lab/internal/storage"
	chstore "roulette-lab/internal/storage/clickhouse"
	"roulette-lab/internal/storage/memory"
	"roulette-lab/internal/storage/migrations"
	pgstore "roulette-lab/internal/storage/postgres"
	redisstore "roulette-lab/internal/storage/redis"
	"roulette-lab/internal/strategy"
)

// stores holds the storage implementations selected by configuration.
type stores struct {
	spins    storage.SpinStore
	cache    storage.DailyStreakStore
	locker   storage.Locker
	stats    storage.StatsStore // clickhouse when configured, memory otherwise
	progress storage.PrecomputeProgressStore
}

func main() {
	configPath := flag.String("config", os.Getenv("ROULETTE_CONFIG"), "Path to YAML config file (optional)")
	precomputeOnStart := flag.Bool("precompute-on-start", false, "Run the precompute job once before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}).
		With().Str("env", cfg.Environment).Logger()

	if err := run(cfg, log, *precomputeOnStart); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("shutdown complete")
}

func run(cfg *config.Config, log zerolog.Logger, precomputeOnStart bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := createStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	registry, err := strategy.NewRegistryFromConfigs(cfg.Strategies)
	if err != nil {
		return fmt.Errorf("load strategies: %w", err)
	}
	log.Info().Int("strategies", registry.Len()).Msg("strategies registered")

	metrics := observability.NewMetrics("", nil)

	analyzer := analysis.New(analysis.Options{
		Registry:   registry,
		SpinStore:  st.spins,
		Cache:      st.cache,
		Locker:     st.locker,
		StatsStore: st.stats,
		Metrics:    metrics,
		Logger:     log,
		LiveWindow: cfg.Analysis.LiveWindow,
		LockTTL:    cfg.Analysis.LockTTL,
	})

	// Nightly precompute
	sched := scheduler.New(log)
	job := scheduler.NewPrecomputeJob(analyzer, st.progress, cfg.Scheduler.CatchUpDays, metrics, log)
	if precomputeOnStart {
		if err := sched.RunOnce(ctx, job); err != nil {
			log.Error().Err(err).Msg("initial precompute failed")
		}
	}
	if cfg.Scheduler.Enabled {
		if err := sched.Schedule(cfg.Scheduler.Spec, job); err != nil {
			return fmt.Errorf("schedule precompute: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	server := api.New(api.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		DefaultAttempts: cfg.Analysis.DefaultAttempts,
		Service:         analyzer,
		Metrics:         metrics,
		Log:             log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// createStores connects the configured backends. The returned cleanup closes every connection.
func createStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	st := &stores{}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN, pgstore.WithMaxConns(cfg.Storage.PostgresConns))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)

		if cfg.Storage.Migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("postgres migrations: %w", err)
			}
			log.Info().Msg("postgres migrations applied")
		}

		st.spins = pgstore.NewSpinStore(pool)
		st.cache = pgstore.NewDailyStreakStore(pool)
		st.progress = pgstore.NewPrecomputeProgressStore(pool)
	default:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		st.spins = memory.NewSpinStore()
		st.cache = memory.NewDailyStreakStore()
		st.progress = memory.NewPrecomputeProgressStore()
	}
	st.locker = memory.NewLocker()
	st.stats = memory.NewStatsStore()

	if cfg.Storage.ClickHouseDSN != "" {
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.Storage.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickHouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.Storage.ClickHouseDSN)
		}
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		st.stats = chstore.NewStatsStore(conn)
	}

	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(ctx, cfg.Redis.Addr,
			redisstore.WithPassword(cfg.Redis.Password),
			redisstore.WithDB(cfg.Redis.DB),
			redisstore.WithPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })

		front := redisstore.NewDailyStreakStore(client, cfg.Redis.TTL)
		st.cache = storage.NewLayeredDailyStreakStore(front, st.cache, log)
		st.locker = redisstore.NewLocker(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache enabled")
	}

	return st, cleanup, nil
}
