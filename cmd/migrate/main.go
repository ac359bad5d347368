package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"bookcatalog/db"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/logging"
	"bookcatalog/internal/platform/postgres"
)

var errNameRequired = errors.New("name is required for 'create' command")

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	cfg, err := config.LoadForTools()
	if err != nil {
		logging.Must("info").Fatal("invalid configuration", zap.Error(err))
	}
	logger := logging.Must(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), *command, *name, cfg.DatabaseDSN, logger); err != nil {
		logger.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
	}
}

// migrationsDir is where "create" writes new files. Applying migrations
// always uses the set embedded in the binary.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}

func run(ctx context.Context, command, name, dsn string, logger *zap.Logger) error {
	if command == "create" {
		if name == "" {
			return errNameRequired
		}
		goose.SetBaseFS(nil)
		if err := goose.Create(nil, migrationsDir(), name, "sql"); err != nil {
			return err
		}
		logger.Info("migration created", zap.String("name", name), zap.String("dir", migrationsDir()))
		return nil
	}

	pool, err := postgres.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if command == "up" {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("migrations applied", zap.String("db", postgres.RedactDSN(dsn)))
		return nil
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(db.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "down":
		if err := goose.DownContext(ctx, sqlDB, db.MigrationsDir); err != nil {
			return err
		}
		logger.Info("migration rolled back")
	case "status":
		return goose.StatusContext(ctx, sqlDB, db.MigrationsDir)
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, create", command)
	}
	return nil
}
