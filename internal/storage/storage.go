// Package storage provides the SQLite-backed persistence layer for wsadmin.
//
// It opens the database through database/sql and mattn/go-sqlite3, applies
// the built-in migrations, and exposes one generic repository per model.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"wsadmin/internal/config"
)

// Storage owns the database handle and everything built on top of it.
type Storage struct {
	db       *sql.DB
	orm      *ORM
	repos    *Repositories
	migrator *Migrator
}

// Open connects to the SQLite database at cfg.Path and migrates it to the
// latest schema.
//
// Foreign keys are enforced, transactions take the write lock up front, and
// writers wait up to five seconds on a locked database instead of failing
// immediately.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", cfg.Path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator, err := NewMigrator(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	orm := NewORM(db)
	s := &Storage{
		db:       db,
		orm:      orm,
		repos:    NewRepositories(orm),
		migrator: migrator,
	}

	log.Info().Str("path", cfg.Path).Msg("Storage opened")
	return s, nil
}

// DB returns the underlying database handle.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Repositories returns the per-model repositories.
func (s *Storage) Repositories() *Repositories {
	return s.repos
}

// Migrator returns the schema migrator used at open time.
func (s *Storage) Migrator() *Migrator {
	return s.migrator
}

// Ping checks that the database is reachable within a short deadline.
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// withTx runs fn with repositories bound to a single transaction, committing
// when fn returns nil.
func (s *Storage) withTx(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(NewRepositories(NewORM(tx))); err != nil {
		return err
	}
	return tx.Commit()
}
