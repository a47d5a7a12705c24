package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// PostgresStore appends records through a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	insert string
}

// ConnectPostgres opens a pool, verifies connectivity and applies migrations.
func ConnectPostgres(ctx context.Context, url string, logger *logrus.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := Migrate(ctx, db, DialectPostgres, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, insert: insertStatement(dollar)}, nil
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	if _, err := s.pool.Exec(ctx, s.insert, recordArgs(rec)...); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
