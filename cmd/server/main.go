// Package main runs the recall API server: a spaced-repetition review
// service over PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	configDir := flag.String("config", "", "directory containing config.yaml (defaults to the working directory)")
	flag.Parse()

	if err := run(*configDir, *migrateCmd); err != nil {
		log.Fatalf("recall-api: %v", err)
	}
}

func run(configDir, migrateCmd string) error {
	cfg, err := loadAppConfig(configDir)
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer db.Close()
		return postgres.Migrate(ctx, db, migrateCmd, appLogger)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", appLogger); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadAppConfig loads configuration from dir (or the working directory)
// and the RECALL_* environment.
func loadAppConfig(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if dir == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"auto_migrate", cfg.Database.AutoMigrate)
	return cfg, nil
}
