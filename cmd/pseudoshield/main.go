package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/config"
	"github.com/MaitreJV/pseudoshield/internal/logger"
	"github.com/MaitreJV/pseudoshield/internal/server"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("PseudoShield %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck {
		performHealthCheck()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting PseudoShield",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	kv, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage backend", zap.Error(err))
	}
	defer kv.Close()

	// Pick up state persisted under the pre-rename key names.
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.MigrateKeys(migrateCtx, kv); err != nil {
		log.Warn("Legacy key migration failed", zap.Error(err))
	}
	cancelMigrate()

	srv, err := server.New(cfg, kv, log)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	if err := config.Watch(cfg, func(updated *config.Config) {
		log.Info("Configuration reloaded",
			zap.String("min_confidence", updated.Privacy.MinConfidence),
			zap.Bool("journal_enabled", updated.Journal.Enabled),
		)
	}); err != nil {
		log.Warn("Configuration watching unavailable", zap.Error(err))
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}

// openStore builds the configured key-value backend
func openStore(cfg *config.Config, log *logger.Logger) (store.KV, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return store.NewRedisStore(&store.RedisConfig{
			URL:            cfg.Storage.Redis.URL,
			KeyPrefix:      cfg.Storage.Redis.KeyPrefix,
			MaxConnections: cfg.Storage.Redis.MaxConnections,
			MinIdleConns:   cfg.Storage.Redis.MinIdleConns,
		}, log.WithComponent("store").Logger)
	case "postgres":
		return store.NewPostgresStore(&store.PostgresConfig{
			DatabaseURL:     cfg.Storage.Postgres.DatabaseURL,
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		}, log.WithComponent("store").Logger)
	case "memory", "":
		return store.NewMemoryStore(0), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// performHealthCheck probes a running server and exits accordingly
func performHealthCheck() {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get("http://localhost:8080/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
