// Command gatehouse runs the policy decision and information server: it
// loads the datastore from the configured backend, serves the management
// and check API, and optionally exposes Prometheus metrics.
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
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatehouse/gatehouse/pkg/api/handlers"
	"github.com/gatehouse/gatehouse/pkg/config"
	"github.com/gatehouse/gatehouse/pkg/datastore"
	"github.com/gatehouse/gatehouse/pkg/logger"
	"github.com/gatehouse/gatehouse/pkg/metrics"
	"github.com/gatehouse/gatehouse/pkg/storage"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gatehouse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("GATEHOUSE_CONFIG")
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	backend, err := cfg.ParseBackend()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(backend, log)
	if err != nil {
		return fmt.Errorf("failed to open storage backend: %w", err)
	}
	defer store.Close() //nolint:errcheck

	log.Info("Starting gatehouse",
		zap.String("version", version),
		zap.String("backend", string(backend.Type)),
		zap.Int("port", cfg.Server.Port))

	ds, err := datastore.New(ctx, store, log)
	if err != nil {
		return fmt.Errorf("failed to load datastore: %w", err)
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.Init()
		metrics.Up.Set(1)
		metrics.Info.WithLabelValues(version, string(backend.Type)).Set(1)

		metricsServer = metrics.NewServer(&cfg.Metrics, log)
		if err := metricsServer.Start(); err != nil {
			return err
		}
		metrics.StartMemoryMetricsUpdater(ctx, 15*time.Second)
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiServer := handlers.NewServer(ds, log)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiServer.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		metrics.Up.Set(0)
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Shutdown complete")
	return nil
}

// openStorage builds the storage backend named by the parsed tag. The nil
// backend keeps everything in process memory and loses it on exit.
func openStorage(backend config.Backend, log *zap.Logger) (storage.Storage, error) {
	switch backend.Type {
	case config.BackendNil:
		return storage.NewMemoryStorage(), nil
	case config.BackendFile:
		return storage.NewFileStorage(backend.Path, log)
	case config.BackendEtcd:
		return storage.NewEtcdStorage(backend.Endpoint, log)
	}
	return nil, fmt.Errorf("unknown backend type %q", backend.Type)
}
