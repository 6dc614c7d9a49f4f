package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	connectAttempts = 10
	connectBackoff  = 3 * time.Second
)

// NewPool connects to Postgres, retrying while the database comes up.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	var pool *pgxpool.Pool
	for i := 0; i < connectAttempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err = pgxpool.NewWithConfig(attemptCtx, cfg)
		if err == nil {
			if pingErr := pool.Ping(attemptCtx); pingErr == nil {
				cancel()
				return pool, nil
			} else {
				err = pingErr
				pool.Close()
			}
		}
		cancel()

		slog.Warn("db not ready", "attempt", i+1, "error", err)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("connect to db after %d attempts: %w", connectAttempts, err)
}

// Migrate applies goose migrations from dir.
func Migrate(databaseURL, dir string) error {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open sql.DB for migrations: %w", err)
	}
	defer conn.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(conn, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
