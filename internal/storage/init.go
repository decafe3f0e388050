package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"imageingest/internal/logger"

	_ "github.com/lib/pq"
)

// RunMigrations applies the goose migrations in dir to the database at dsn.
func RunMigrations(dsn, dir string) error {
	const op = "storage.RunMigrations"

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	l := logger.L()
	if err := goose.Up(db, dir); err != nil {
		if errors.Is(err, goose.ErrNoNextVersion) {
			l.Info().Msg("no migrations to apply")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	l.Info().Str("dir", dir).Msg("database migrations applied")
	return nil
}
