package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// DefaultProfileName is the profile seeded into every new database.
const DefaultProfileName = "Default User"

// ErrNotFound is returned when a profile, entry or setting does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS profiles (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS work_entries (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id     INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		date           TEXT NOT NULL,
		start_time     TEXT,
		end_time       TEXT,
		break_minutes  INTEGER NOT NULL DEFAULT 0,
		day_type       TEXT NOT NULL DEFAULT 'work_day',
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(profile_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_profile_date ON work_entries(profile_id, date);

	CREATE TABLE IF NOT EXISTS settings (
		profile_id  INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		PRIMARY KEY (profile_id, key)
	);

	INSERT OR IGNORE INTO profiles (name) VALUES ('Default User');
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO settings (profile_id, key, value)
		 SELECT id, ?, ? FROM profiles WHERE name = ?
		 UNION ALL
		 SELECT id, ?, ? FROM profiles WHERE name = ?`,
		SettingTheme, DefaultTheme, DefaultProfileName,
		SettingDailyTarget, DefaultDailyTarget, DefaultProfileName,
	)
	return err
}

// notFound maps sql.ErrNoRows onto ErrNotFound and wraps everything with
// the failed action.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
