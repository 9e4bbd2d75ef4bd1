package db

import (
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

// Migrate applies every pending goose migration found in dir.
func Migrate(pool *Pool, dir string) error {
	return RunMigrations(pool, "up", dir)
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset)
// against the pool through a database/sql bridge.
func RunMigrations(pool *Pool, command, dir string, args ...string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("db: goose dialect: %w", err)
	}

	// Not closed: the bridge borrows connections from pool, which stays in use.
	// Without idle slots every borrowed connection goes straight back.
	sqlDB := stdlib.OpenDBFromPool(pool)
	sqlDB.SetMaxIdleConns(0)

	if err := goose.Run(command, sqlDB, dir, args...); err != nil {
		return fmt.Errorf("db: goose %s: %w", command, err)
	}
	return nil
}
