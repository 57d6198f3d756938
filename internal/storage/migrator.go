// Package storage provides database migration functionality for wsadmin.
//
// The migration system is designed to be:
//   - Version-controlled and reproducible
//   - Atomic (each migration runs in a transaction)
//   - Idempotent (safe to run multiple times)
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Migrator applies versioned schema migrations and records them in
// schema_migrations.
type Migrator struct {
	db         *sql.DB
	migrations []Migration
}

// Migration is a single schema change.
type Migration struct {
	Version int
	Name    string

	// UpSQL holds one or more semicolon-separated statements.
	UpSQL string

	// DownSQL is kept for manual rollbacks; the migrator never runs it.
	DownSQL string
}

// MigrationRecord is a row of schema_migrations.
type MigrationRecord struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

// NewMigrator creates the tracking table if needed and registers the
// built-in migrations.
func NewMigrator(ctx context.Context, db *sql.DB) (*Migrator, error) {
	const query = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	m := &Migrator{db: db}
	m.registerBuiltinMigrations()
	return m, nil
}

// registerBuiltinMigrations registers all the built-in migrations for wsadmin.
//
// These migrations create the tables behind the admin screens:
//   - users, teams, team_members: accounts and their organisations
//   - projects: repositories configured for a team
//   - workspaces, workspace_instances: environments and their runs
//   - personal_access_tokens: hashed API tokens
func (m *Migrator) registerBuiltinMigrations() {
	m.AddMigration(Migration{
		Version: 1,
		Name:    "create_users_table",
		UpSQL: `
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				full_name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL UNIQUE,
				avatar_url TEXT NOT NULL DEFAULT '',
				admin BOOLEAN NOT NULL DEFAULT 0,
				blocked BOOLEAN NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX idx_users_blocked ON users(blocked);
		`,
		DownSQL: `DROP TABLE IF EXISTS users;`,
	})

	m.AddMigration(Migration{
		Version: 2,
		Name:    "create_teams_tables",
		UpSQL: `
			CREATE TABLE teams (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				slug TEXT NOT NULL UNIQUE,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE team_members (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				team_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				role TEXT NOT NULL CHECK (role IN ('owner', 'member')),
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (team_id, user_id),
				FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			CREATE INDEX idx_team_members_user_id ON team_members(user_id);
		`,
		DownSQL: `DROP TABLE IF EXISTS team_members; DROP TABLE IF EXISTS teams;`,
	})

	m.AddMigration(Migration{
		Version: 3,
		Name:    "create_projects_table",
		UpSQL: `
			CREATE TABLE projects (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				team_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				clone_url TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (team_id, clone_url),
				FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
			);

			CREATE INDEX idx_projects_team_id ON projects(team_id);
		`,
		DownSQL: `DROP TABLE IF EXISTS projects;`,
	})

	m.AddMigration(Migration{
		Version: 4,
		Name:    "create_workspaces_tables",
		UpSQL: `
			CREATE TABLE workspaces (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				owner_id INTEGER NOT NULL,
				project_id INTEGER,
				context_url TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				type TEXT NOT NULL CHECK (type IN ('regular', 'prebuild')),
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE SET NULL
			);

			CREATE INDEX idx_workspaces_owner_id ON workspaces(owner_id);
			CREATE INDEX idx_workspaces_project_id ON workspaces(project_id);

			CREATE TABLE workspace_instances (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				workspace_id INTEGER NOT NULL,
				instance_id TEXT NOT NULL UNIQUE,
				region TEXT NOT NULL DEFAULT '',
				phase TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				phase_changed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				stopped_at DATETIME,
				FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
			);

			CREATE INDEX idx_workspace_instances_workspace_id ON workspace_instances(workspace_id);
			CREATE INDEX idx_workspace_instances_phase ON workspace_instances(phase);
		`,
		DownSQL: `DROP TABLE IF EXISTS workspace_instances; DROP TABLE IF EXISTS workspaces;`,
	})

	m.AddMigration(Migration{
		Version: 5,
		Name:    "create_personal_access_tokens_table",
		UpSQL: `
			CREATE TABLE personal_access_tokens (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				hash TEXT NOT NULL UNIQUE,
				scopes TEXT NOT NULL DEFAULT '',
				expires_at DATETIME NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			CREATE INDEX idx_personal_access_tokens_user_id ON personal_access_tokens(user_id);
			CREATE INDEX idx_personal_access_tokens_expires_at ON personal_access_tokens(expires_at);
		`,
		DownSQL: `DROP TABLE IF EXISTS personal_access_tokens;`,
	})

	log.Debug().Int("count", len(m.migrations)).Msg("Built-in migrations registered")
}

// AddMigration registers a migration, keeping the list ordered by version.
func (m *Migrator) AddMigration(migration Migration) {
	m.migrations = append(m.migrations, migration)
	slices.SortFunc(m.migrations, func(a, b Migration) int {
		return a.Version - b.Version
	})
}

// Migrate applies every pending migration, each in its own transaction, and
// returns how many were applied.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, migration := range pending {
		log.Info().
			Int("version", migration.Version).
			Str("name", migration.Name).
			Msg("Applying migration")

		if err := m.apply(ctx, migration); err != nil {
			return i, fmt.Errorf("failed to apply migration %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	if len(pending) > 0 {
		log.Info().Int("count", len(pending)).Msg("Database migrations completed")
	} else {
		log.Debug().Msg("No pending migrations")
	}

	return len(pending), nil
}

// Pending returns the registered migrations not yet applied.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	records, err := m.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := make(map[int]bool, len(records))
	for _, r := range records {
		applied[r.Version] = true
	}

	var pending []Migration
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Status returns the applied migrations ordered by version.
func (m *Migrator) Status(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migration status: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var record MigrationRecord
		if err := rows.Scan(&record.Version, &record.Name, &record.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration records: %w", err)
	}

	return records, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for i, stmt := range splitSQL(migration.UpSQL) {
		log.Debug().
			Int("version", migration.Version).
			Int("statement", i+1).
			Str("sql", stmt).
			Msg("Executing migration statement")

		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		migration.Version, migration.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}
	return nil
}

// splitSQL splits a script on semicolons. Statements must not contain
// semicolons inside string literals.
func splitSQL(script string) []string {
	var result []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
