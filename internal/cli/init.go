// Package cli provides common CLI initialization utilities shared by
// cmd/spending, cmd/spending-worker and cmd/spendctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spending/internal/config"
	"spending/internal/log"
	"spending/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger from LOG_LEVEL and LOG_FORMAT
// and installs it as the slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Format:    cfg.LogFormat,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadConfig reads .env and the environment, sets up logging on out and
// validates the result.
func LoadConfig(component string, out io.Writer) (*config.Config, *log.Logger, error) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg, component, out)
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

// LoadAndValidateConfig is LoadConfig for long-running binaries: it exits
// the process when the configuration is invalid.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger) {
	cfg, logger, err := LoadConfig(component, os.Stdout)
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// StorageConfig maps the database settings onto the storage layer.
func StorageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Type: cfg.DatabaseType,
		URL:  cfg.DatabaseURL,
		Path: cfg.SQLiteDBPath,
	}
}

// OpenRepository opens the configured database and applies migrations.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.Repository, error) {
	repo, err := storage.Open(ctx, StorageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseType, err)
	}
	logger.Info("Database ready",
		"type", repo.Dialect(),
		log.FieldOperation, log.OpMigrate)
	return repo, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}
