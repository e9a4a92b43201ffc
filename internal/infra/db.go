package infra

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Vovarama1992/mission_tower/internal/config"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS missions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_title  TEXT    NOT NULL,
	involved_pups  TEXT    NOT NULL DEFAULT '',
	main_location  TEXT    NOT NULL,
	mission_script TEXT    NOT NULL,
	translation    TEXT    NOT NULL,
	is_requested   BOOLEAN NOT NULL DEFAULT FALSE,
	audio_ready    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_missions_pending ON missions (is_requested, audio_ready, id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS missions (
	id             BIGSERIAL PRIMARY KEY,
	mission_title  TEXT        NOT NULL,
	involved_pups  TEXT        NOT NULL DEFAULT '',
	main_location  TEXT        NOT NULL,
	mission_script TEXT        NOT NULL,
	translation    TEXT        NOT NULL,
	is_requested   BOOLEAN     NOT NULL DEFAULT FALSE,
	audio_ready    BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_missions_pending ON missions (is_requested, audio_ready, id);
`

// OpenDB opens the configured database and applies the schema.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DatabaseURL)
	default:
		if err := os.MkdirAll(cfg.DatabaseDir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		return OpenSQLite(ctx, cfg.SQLitePath())
	}
}

// OpenSQLite keeps a single connection: sqlite serializes writers anyway and
// a shared connection keeps the fetch-and-mark update free of SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(config.DriverSQLite, path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", filepath.Base(path), err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(config.DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	if err := migrate(ctx, db, postgresSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
