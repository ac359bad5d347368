// Package db holds the SQL migrations applied by cmd/migrate and by the
// repository integration tests.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads from.
const MigrationsDir = "migrations"
