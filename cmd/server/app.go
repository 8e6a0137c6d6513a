package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/store"
)

// application holds the shared dependencies of the server and owns their
// shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  domain.Clock

	itemStore store.MemoryItemStore

	jwtService    auth.JWTService
	srsService    srs.Service
	reviewService review.Service

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication wires the stores and services on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  domain.SystemClock,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	params, err := srs.NewParams(srs.ParamsConfig{IntervalDays: cfg.Review.IntervalDays})
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS parameters: %w", err)
	}
	app.srsService = srs.NewService(srs.WithParams(params), srs.WithClock(app.clock))

	app.itemStore = postgres.NewPostgresMemoryItemStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))

	app.reviewService = review.NewReviewService(
		app.itemStore,
		review.NewSQLTransactor(db, app.itemStore),
		app.srsService,
		logger,
		review.WithClock(app.clock),
		review.WithSessionLimit(cfg.Review.SessionLimit),
		review.WithEventEmitter(app.eventEmitter),
	)

	logger.Info("application initialized",
		"interval_days", cfg.Review.IntervalDays,
		"session_limit", cfg.Review.SessionLimit)
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
