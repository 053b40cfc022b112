package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is the Local Store (C1): durable tables for users, lessons,
// progresses, and the sync journal, plus per-table change streams.
type Store struct {
	db *sql.DB

	broadcast broadcastHub
}

// Open creates or opens a SQLite database at path. Pass ":memory:" for an
// ephemeral store (used throughout this module's tests). Idempotent: safe
// to call multiple times against the same path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, domain.NewStorageError("open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, domain.NewStorageError("connect to database", err)
	}

	// SQLite allows only one writer at a time; pin the pool to avoid
	// SQLITE_BUSY under concurrent access instead of masking it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	s.broadcast.init()
	return s, nil
}

// Close closes the database connection and the broadcast hub.
func (s *Store) Close() error {
	s.broadcast.closeAll()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return domain.NewStorageError(fmt.Sprintf("apply pragma %q", p), err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return domain.NewStorageError("apply schema", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return domain.NewStorageError("read schema version", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return domain.NewStorageError("set schema version", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	return nil
}
