package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"imageingest/internal/models"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn, migrationsDir string) (*Storage, error) {
	const op = "storage.NewStorage"

	if err := RunMigrations(dsn, migrationsDir); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg.MaxConns = 8
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

// CanonicalPath returns the canonical path of a person. Missing rows and
// blank paths both yield models.ErrSubjectNotFound.
func (s *Storage) CanonicalPath(ctx context.Context, subjectID int64) (string, error) {
	const op = "storage.CanonicalPath"

	var path *string
	err := s.pool.QueryRow(ctx,
		`SELECT canonical_path FROM people WHERE id = $1`, subjectID).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrSubjectNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if path == nil || strings.TrimSpace(*path) == "" {
		return "", models.ErrSubjectNotFound
	}
	return *path, nil
}

func (s *Storage) SaveSubject(ctx context.Context, subjectID int64, name, canonicalPath string) error {
	const op = "storage.SaveSubject"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO people (id, name, canonical_path) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, canonical_path = EXCLUDED.canonical_path`,
		subjectID, name, canonicalPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
