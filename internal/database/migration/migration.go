package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Dialect bundles the schema steps of one backend with the query that tells
// whether the current schema is already in place.
type Dialect struct {
	Name     string
	Sentinel string
	Steps    []migrationStep
}

// Postgres creates the remote schema. The todos.status column did not exist
// in databases created before the workflow column; those are upgraded in place.
var Postgres = Dialect{
	Name: "postgres",
	Sentinel: `SELECT COUNT(*) FROM information_schema.columns
  WHERE table_schema = 'public' AND table_name = 'todos' AND column_name = 'status'`,
	Steps: []migrationStep{
		{
			Name: "create_table_folders",
			SQL: `CREATE TABLE IF NOT EXISTS folders (
  id          UUID        PRIMARY KEY,
  user_id     TEXT        NOT NULL,
  name        TEXT        NOT NULL,
  is_expanded BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "create_table_files",
			SQL: `CREATE TABLE IF NOT EXISTS files (
  id         UUID        PRIMARY KEY,
  folder_id  UUID        NOT NULL REFERENCES folders (id) ON DELETE CASCADE,
  user_id    TEXT        NOT NULL,
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "create_table_todos",
			SQL: `CREATE TABLE IF NOT EXISTS todos (
  id         BIGSERIAL   PRIMARY KEY,
  file_id    UUID        NOT NULL REFERENCES files (id) ON DELETE CASCADE,
  user_id    TEXT        NOT NULL,
  text       TEXT        NOT NULL,
  completed  BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "add_column_todos_status",
			SQL: `ALTER TABLE todos ADD COLUMN IF NOT EXISTS status TEXT NOT NULL DEFAULT 'new'
  CHECK (status IN ('new', 'in-progress', 'completed'));`,
		},
		{
			Name: "backfill_todos_status",
			SQL:  `UPDATE todos SET status = 'completed' WHERE completed AND status = 'new';`,
		},
		{
			Name: "create_index_folders_user_created_at",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_folders_user_created_at ON folders (user_id, created_at);`,
		},
		{
			Name: "create_index_files_folder_id",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_files_folder_id ON files (folder_id);`,
		},
		{
			Name: "create_index_todos_file_id",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_todos_file_id ON todos (file_id);`,
		},
	},
}

// SQLite creates the offline schema, including the workspaces table that
// replaces object storage in single-user mode.
var SQLite = Dialect{
	Name:     "sqlite",
	Sentinel: `SELECT COUNT(*) FROM pragma_table_info('todos') WHERE name = 'status'`,
	Steps: []migrationStep{
		{
			Name: "create_table_folders",
			SQL: `CREATE TABLE IF NOT EXISTS folders (
  id          TEXT      PRIMARY KEY,
  user_id     TEXT      NOT NULL,
  name        TEXT      NOT NULL,
  is_expanded BOOLEAN   NOT NULL DEFAULT 1,
  created_at  TIMESTAMP NOT NULL,
  updated_at  TIMESTAMP NOT NULL
);`,
		},
		{
			Name: "create_table_files",
			SQL: `CREATE TABLE IF NOT EXISTS files (
  id         TEXT      PRIMARY KEY,
  folder_id  TEXT      NOT NULL REFERENCES folders (id) ON DELETE CASCADE,
  user_id    TEXT      NOT NULL,
  name       TEXT      NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);`,
		},
		{
			Name: "create_table_todos",
			SQL: `CREATE TABLE IF NOT EXISTS todos (
  id         INTEGER   PRIMARY KEY AUTOINCREMENT,
  file_id    TEXT      NOT NULL REFERENCES files (id) ON DELETE CASCADE,
  user_id    TEXT      NOT NULL,
  text       TEXT      NOT NULL,
  completed  BOOLEAN   NOT NULL DEFAULT 0,
  status     TEXT      NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'in-progress', 'completed')),
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);`,
		},
		{
			Name: "create_table_workspaces",
			SQL: `CREATE TABLE IF NOT EXISTS workspaces (
  user_id    TEXT      PRIMARY KEY,
  state      TEXT      NOT NULL,
  updated_at TIMESTAMP NOT NULL
);`,
		},
		{
			Name: "create_index_files_folder_id",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_files_folder_id ON files (folder_id);`,
		},
		{
			Name: "create_index_todos_file_id",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_todos_file_id ON todos (file_id);`,
		},
	},
}

// EnsureMigrated checks whether the schema is current and runs the dialect's
// steps if it isn't. Every step is idempotent.
func EnsureMigrated(ctx context.Context, db *sql.DB, d Dialect, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(
		zap.String("component", "database"),
		zap.String("dialect", d.Name),
		zap.String("db_host", dbHost),
	)

	log.Info("db_migration_check", zap.String("event", "db_migration_check"), zap.String("status", "starting"))

	var count int
	if err := db.QueryRowContext(ctx, d.Sentinel).Scan(&count); err != nil {
		log.Error("db_migration_failed",
			zap.String("event", "db_migration_failed"),
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel: %w", err)
	}

	if count > 0 {
		log.Info("schema already exists, skipping migration",
			zap.String("event", "db_migration_skip"),
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("event", "db_migration_start"), zap.String("status", "in_progress"))

	for _, step := range d.Steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("event", "db_migration_failed"),
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("event", "db_migration_step"),
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("event", "db_migration_success"),
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
