package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

func setupGoose() error {
	goose.SetBaseFS(migrationFiles)
	return goose.SetDialect("postgres")
}

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, migrationsDir)
}

// RunMigrationCommand runs a goose command such as "up", "down" or
// "status" against the embedded migrations.
func RunMigrationCommand(ctx context.Context, database *sql.DB, command string, args ...string) error {
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, database, migrationsDir, args...)
}
