package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	dbCfg, logCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(logCfg, "storefront-migrate")

	if err := database.Migrate(dbCfg.ConnectionString(), logger); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	var dbName string
	var version int64
	err = pool.QueryRow(ctx, "SELECT current_database(), version FROM schema_migrations").Scan(&dbName, &version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info().
		Str("database", dbName).
		Int64("version", version).
		Msg("database schema is up to date")

	return nil
}
