package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/ideas/internal/adapters/http/api"
	repository "github.com/okian/ideas/internal/adapters/repository"
	app "github.com/okian/ideas/internal/app"
	"github.com/okian/ideas/internal/config"
	"github.com/okian/ideas/internal/domain/scoring"
	"github.com/okian/ideas/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := newService(cfg, store, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store_driver", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// openStore builds the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, func(), error) {
	opts := []repository.Option{
		repository.WithLogger(log.Named("store")),
		repository.WithQueryTimeout(cfg.QueryTimeout),
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		return repository.NewPostgresStore(pool, opts...), pool.Close, nil

	case config.DriverSQLite:
		s, err := repository.OpenSQLite(ctx, cfg.SQLitePath, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	case config.DriverMemory:
		s := repository.NewMemoryStore()
		if cfg.SeedFile != "" {
			if err := repository.LoadSeed(s, cfg.SeedFile, time.Now()); err != nil {
				return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
			}
			log.Info(ctx, "memory store seeded", logger.String("seed_file", cfg.SeedFile))
		}
		return s, func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
}

func newService(cfg *config.Config, store repository.Store, log logger.Logger) *app.Service {
	scorer := scoring.NewScorer(
		scoring.WithStaleAfter(cfg.StaleAfter),
		scoring.WithDecayFactor(cfg.StaleDecayFactor),
	)
	return app.NewFromStore(store,
		app.WithLogger(log.Named("service")),
		app.WithScorer(scorer),
	)
}

func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc,
		api.WithLogger(log.Named("api")),
		api.WithWeightWriteLimit(cfg.WeightWriteRPS, cfg.WeightWriteBurst),
	)
	apiServer.Register(ctx, mux)
	return mux
}
