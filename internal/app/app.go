// Package app wires the review engine together for the server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/backup"
	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
	"github.com/leetcurve/backend/internal/repository"
	"github.com/leetcurve/backend/internal/service"
)

// App holds the shared components built from one Config
type App struct {
	Config    *infrastructure.Config
	Logger    *zap.Logger
	Telemetry *infrastructure.Telemetry
	Metrics   *infrastructure.TelemetryMetrics
	Database  *infrastructure.Database // nil with the memory driver
	Store     domain.ScheduleStore
	Backup    *backup.FileNotifier // nil when backups are disabled
	Reviews   *service.ReviewService
	Tokens    *service.TokenService
	Refresher *service.Refresher
}

// New opens the store, restores from backup on a fresh install and builds
// the services. Close releases everything New acquired.
func New(ctx context.Context, config *infrastructure.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: config, Logger: logger}

	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.Telemetry = telemetry

	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	a.Metrics = metrics

	fresh, err := a.openStore()
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	if config.Backup.Enabled {
		if fresh {
			if _, err := backup.Restore(ctx, a.Store, config.Backup.Path, logger); err != nil {
				logger.Warn("Backup restore skipped",
					zap.String("path", config.Backup.Path),
					zap.Error(err),
				)
			}
		}
		a.Backup = backup.NewFileNotifier(a.Store, &config.Backup, metrics, logger)
	}

	var notifier service.BackupNotifier
	if a.Backup != nil {
		notifier = a.Backup
	}
	a.Reviews = service.NewReviewService(a.Store, notifier, &config.Schedule, metrics, telemetry.Tracer, logger)
	a.Tokens = service.NewTokenService(&config.Auth)
	a.Refresher = service.NewRefresher(a.Reviews, config.Schedule.RefreshInterval, logger)

	return a, nil
}

// openStore builds the configured ScheduleStore and reports whether it
// started out as a fresh install. Only a fresh install is restored from
// backup, so clearing the data does not bring it back on the next start.
func (a *App) openStore() (bool, error) {
	config := &a.Config.Database
	if config.Driver == infrastructure.DriverMemory {
		a.Store = repository.NewMemoryRepository()
		a.Logger.Info("Using in-memory store")
		return true, nil
	}

	database, err := infrastructure.NewDatabase(config, a.Logger)
	if err != nil {
		return false, err
	}
	a.Database = database

	fresh := !database.Migrator().HasTable(&domain.Problem{})
	if err := database.AutoMigrate(); err != nil {
		return false, err
	}
	a.Store = repository.NewScheduleRepository(database.DB)
	return fresh, nil
}

// HealthCheck reports whether the primary store is reachable
func (a *App) HealthCheck(ctx context.Context) error {
	if a.Database == nil {
		return nil
	}
	return a.Database.HealthCheck(ctx)
}

// Close flushes the pending backup write, closes the database and shuts
// telemetry down. Errors are logged.
func (a *App) Close(ctx context.Context) {
	if a.Backup != nil {
		if err := a.Backup.Close(ctx); err != nil {
			a.Logger.Error("Failed to write final backup", zap.Error(err))
		}
	}
	if a.Database != nil {
		if err := a.Database.Close(); err != nil {
			a.Logger.Error("Failed to close database", zap.Error(err))
		}
	}
	if a.Telemetry != nil {
		_ = a.Telemetry.Shutdown(ctx)
	}
}
