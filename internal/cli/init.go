// Package cli provides the initialization steps of the bankpivot command:
// logging, environment, configuration and the optional remote destinations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bankpivot/internal/amqp"
	"bankpivot/internal/config"
	"bankpivot/internal/gcs"
	"bankpivot/internal/log"
	"bankpivot/internal/services"
	"bankpivot/internal/sheets"
	"bankpivot/internal/sheets/google"
	"bankpivot/internal/storage"
)

// SetupLogger initializes structured logging on stderr at the given level and
// sets it as the default logger. An unknown level falls back to info.
func SetupLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig validates cfg and exits the process on failure.
func LoadAndValidateConfig(logger *log.Logger, cfg *config.Config) *config.Config {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// InitHistory opens the run history database at dbPath.
func InitHistory(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize run history at %s: %w", dbPath, err)
	}
	version, dirty, err := storage.SchemaVersion(dbPath)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("read run history schema at %s: %w", dbPath, err)
	}
	if dirty {
		repo.Close()
		return nil, fmt.Errorf("run history schema at %s is dirty at version %d", dbPath, version)
	}
	logger.WithComponent(log.ComponentStorage).Debug("Run history ready",
		log.NewFields().
			WithOperation(log.OpMigrate).
			With(log.FieldTarget, dbPath).
			With("schema_version", version).
			ToSlice()...)
	return repo, nil
}

// NewPublisher connects every remote destination enabled in cfg. It returns a
// nil publisher when none is configured. The returned close function releases
// the connections and is never nil.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.Publisher, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	p := &services.Publisher{Timeout: cfg.PublishTimeout, Logger: logger}
	enabled := false

	if cfg.GCSBucket != "" {
		p.Uploader = &gcs.Uploader{Bucket: cfg.GCSBucket, Prefix: cfg.GCSPrefix, Timeout: cfg.PublishTimeout}
		enabled = true
	}

	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.New(ctx, cfg.GoogleSpreadsheetID, logger)
		if err != nil {
			return nil, closeAll, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		p.Sheets = &sheets.Sink{Writer: client, Sheet: cfg.GoogleSheetName}
		enabled = true
	}

	if cfg.HistoryDBPath != "" {
		repo, err := InitHistory(logger, cfg.HistoryDBPath)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, repo.Close)
		p.History = repo
		enabled = true
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			return nil, closeAll, fmt.Errorf("initialize AMQP client: %w", err)
		}
		closers = append(closers, client.Close)
		p.Notifier = client
		enabled = true
	}

	if !enabled {
		return nil, closeAll, nil
	}
	return p, closeAll, nil
}
