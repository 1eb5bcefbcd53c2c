package main

import (
	"context"
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/db"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the embedded database migrations",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.StoreBackend != types.StoreBackendPostgres {
			return fmt.Errorf("migrate needs STORE_BACKEND=postgres, got %s", cfg.StoreBackend)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		applied, err := db.ApplyMigrations(ctx, pool, cfg.DatabaseSchema)
		for _, version := range applied {
			logger.WithField("version", version).Info("applied migration")
		}
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		logger.WithField("applied", len(applied)).Info("database is up to date")
		return nil
	},
}
