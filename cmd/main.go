package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookameal/internal/clock"
	"bookameal/internal/config"
	"bookameal/internal/dal"
	"bookameal/internal/observability"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(cfg, logger); err != nil {
			logger.Fatal("migrate failed", zap.Error(err))
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func migrate(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	db, err := dal.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	return dal.ApplyMigrations(ctx, db, logger)
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracer shutdown failed", zap.Error(err))
		}
	}()

	logger, shutdownLogs, err := observability.SetupLogs(ctx, cfg.Otel, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := shutdownLogs(sctx); err != nil {
			logger.Error("log exporter shutdown failed", zap.Error(err))
		}
	}()

	catalog, closeStore, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	router := NewRouter(newHandlers(catalog, clock.Real(), logger, observability.Tracer()), logger, observability.Tracer())

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTP.Port), zap.String("store", cfg.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited properly")
	return nil
}

// openCatalog builds the configured backend. The memory store keeps nothing
// across restarts.
func openCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (dal.Catalog, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return dal.NewMemory(clock.Real()), func() {}, nil
	}

	db, err := dal.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database", zap.String("host", cfg.DB.Host), zap.String("database", cfg.DB.Database))

	if cfg.AutoMigrate {
		if err := dal.ApplyMigrations(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return dal.NewPostgres(db), func() { db.Close() }, nil
}
