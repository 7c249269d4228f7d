package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DB wraps the sqlx connection together with the driver name; a few
// statements differ per dialect.
type DB struct {
	*sqlx.DB
	driver string
}

// Connect opens a database connection and ensures the schema exists.
// driver is "postgres" or "sqlite3"; dsn is the connection string or the
// SQLite file path (":memory:" works for tests).
func Connect(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		// SQLite does not support multiple writers.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	db := &DB{DB: conn, driver: driver}
	if err := db.initializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Driver returns the driver name the connection was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// initializeSchema creates the tables if they do not exist.
func (db *DB) initializeSchema() error {
	stmts := sqliteSchema
	if db.driver == DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS words (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		language TEXT NOT NULL,
		phonetic TEXT NOT NULL DEFAULT '',
		audio_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (text, language)
	)`,
	`CREATE TABLE IF NOT EXISTS learning_records (
		user_id BIGINT NOT NULL,
		word_id BIGINT NOT NULL REFERENCES words(id),
		repetitions INTEGER NOT NULL DEFAULT 0,
		easiness DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 0,
		due_at TIMESTAMPTZ NOT NULL,
		is_learned BOOLEAN NOT NULL DEFAULT FALSE,
		added_at TIMESTAMPTZ NOT NULL,
		last_review_at TIMESTAMPTZ NOT NULL,
		version BIGINT NOT NULL DEFAULT 1,
		PRIMARY KEY (user_id, word_id)
	)`,
	`CREATE INDEX IF NOT EXISTS learning_records_due_idx
		ON learning_records (user_id, due_at)`,
	`CREATE TABLE IF NOT EXISTS review_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		word_id BIGINT NOT NULL,
		quality INTEGER NOT NULL,
		reviewed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS review_logs_user_idx
		ON review_logs (user_id, reviewed_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		language TEXT NOT NULL,
		phonetic TEXT NOT NULL DEFAULT '',
		audio_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (text, language)
	)`,
	`CREATE TABLE IF NOT EXISTS learning_records (
		user_id INTEGER NOT NULL,
		word_id INTEGER NOT NULL REFERENCES words(id),
		repetitions INTEGER NOT NULL DEFAULT 0,
		easiness REAL NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 0,
		due_at TIMESTAMP NOT NULL,
		is_learned BOOLEAN NOT NULL DEFAULT FALSE,
		added_at TIMESTAMP NOT NULL,
		last_review_at TIMESTAMP NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (user_id, word_id)
	)`,
	`CREATE INDEX IF NOT EXISTS learning_records_due_idx
		ON learning_records (user_id, due_at)`,
	`CREATE TABLE IF NOT EXISTS review_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		word_id INTEGER NOT NULL,
		quality INTEGER NOT NULL,
		reviewed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS review_logs_user_idx
		ON review_logs (user_id, reviewed_at)`,
}
