package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"cartlog/internal/audit"
	"cartlog/internal/list"
	"cartlog/internal/list/cache"
	"cartlog/internal/list/handler"
	"cartlog/internal/platform/config"
	"cartlog/internal/platform/httpserver"
	"cartlog/internal/platform/logger"
	"cartlog/internal/platform/metrics"
	platformredis "cartlog/internal/platform/redis"
	platformtx "cartlog/pkg/platform/tx"
)

// main wires storage, the audit log, and the HTTP surface. Business logic
// lives in the internal packages; this file only selects an engine from the
// environment and manages the server lifecycle.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lists, auditLog, opts, cleanup, err := buildStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New()
	opts = append(opts, list.WithLogger(log), list.WithMetrics(m))

	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		opts = append(opts, list.WithSnapshotCache(
			cache.NewRedisSnapshot(rdb.Client, cfg.SnapshotCacheTTL, log),
		))
	}

	svc := list.NewService(lists, auditLog, opts...)

	router := chi.NewRouter()
	handler.New(svc, log).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting cartlog", "addr", cfg.Addr, "store", string(cfg.Store))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStorage opens the configured engine and returns the list store, the
// audit log, engine-specific service options, and a cleanup func.
func buildStorage(ctx context.Context, cfg config.Server) (list.Store, audit.Log, []list.Option, func(), error) {
	noop := func() {}

	switch cfg.Store {
	case config.StoreMemory:
		return list.NewInMemory(), audit.NewInMemoryLog(), nil, noop, nil

	case config.StoreSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		// The sqlite driver serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent transactions.
		db.SetMaxOpenConns(1)
		lists := list.NewSQLiteStore(db)
		auditLog := audit.NewSQLiteLog(db)
		if err := lists.Init(ctx); err != nil {
			db.Close()
			return nil, nil, nil, noop, fmt.Errorf("init sqlite lists schema: %w", err)
		}
		if err := auditLog.Init(ctx); err != nil {
			db.Close()
			return nil, nil, nil, noop, fmt.Errorf("init sqlite audit schema: %w", err)
		}
		opts := []list.Option{list.WithTxRunner(platformtx.NewSQLRunner(db))}
		return lists, auditLog, opts, func() { db.Close() }, nil

	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		lists := list.NewPostgresStore(db)
		auditLog := audit.NewPostgresLog(db)
		if err := lists.Init(ctx); err != nil {
			db.Close()
			return nil, nil, nil, noop, fmt.Errorf("init postgres lists schema: %w", err)
		}
		if err := auditLog.Init(ctx); err != nil {
			db.Close()
			return nil, nil, nil, noop, fmt.Errorf("init postgres audit schema: %w", err)
		}
		opts := []list.Option{list.WithTxRunner(platformtx.NewSQLRunner(db))}
		return lists, auditLog, opts, func() { db.Close() }, nil

	default:
		return nil, nil, nil, noop, fmt.Errorf("unknown store engine %q", cfg.Store)
	}
}
