package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is current.
const sentinelTable = "public.audit_logs"

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                UUID        PRIMARY KEY,
  case_id           TEXT        NOT NULL,
  filename          TEXT        NOT NULL,
  original_filename TEXT        NOT NULL,
  storage_path      TEXT        NOT NULL UNIQUE,
  size              BIGINT      NOT NULL CHECK (size >= 0),
  content_type      TEXT        NOT NULL,
  document_type     TEXT        NOT NULL,
  uploaded_by       TEXT        NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_case_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_case_id ON documents (case_id);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_table_backups",
		SQL: `CREATE TABLE IF NOT EXISTS backups (
  id             UUID        PRIMARY KEY,
  kind           TEXT        NOT NULL CHECK (kind IN ('full', 'incremental', 'differential')),
  status         TEXT        NOT NULL CHECK (status IN ('in_progress', 'completed', 'failed', 'restoring')),
  storage_target TEXT        NOT NULL DEFAULT 'local',
  description    TEXT        NOT NULL DEFAULT '',
  created_by     TEXT        NOT NULL,
  archive_path   TEXT,
  size           BIGINT      CHECK (size >= 0),
  archive_size   BIGINT      CHECK (archive_size >= 0),
  error_message  TEXT,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  completed_at   TIMESTAMPTZ,
  CONSTRAINT backups_result_set_on_completion CHECK (
    (status IN ('completed', 'restoring')) = (completed_at IS NOT NULL AND size IS NOT NULL)
  )
);`,
	},
	{
		Name: "create_index_backups_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_backups_created_at ON backups (created_at DESC);`,
	},
	{
		Name: "create_table_file_backups",
		SQL: `CREATE TABLE IF NOT EXISTS file_backups (
  id               UUID        PRIMARY KEY,
  document_id      UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  backup_id        UUID        NOT NULL REFERENCES backups (id) ON DELETE CASCADE,
  backup_file_path TEXT        NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_file_backups_backup_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_backups_backup_id ON file_backups (backup_id);`,
	},
	{
		Name: "create_table_audit_logs",
		SQL: `CREATE TABLE IF NOT EXISTS audit_logs (
  id            UUID        PRIMARY KEY,
  actor_id      TEXT        NOT NULL,
  action        TEXT        NOT NULL,
  resource_type TEXT        NOT NULL,
  resource_id   TEXT        NOT NULL,
  details       TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks if the schema sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Msg("checking schema")

	var exists bool
	query := "SELECT to_regclass('" + sentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Dur("duration_ms", time.Since(start)).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Dur("duration_ms", time.Since(start)).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Msg("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Err(err).
				Dur("duration_ms", time.Since(start)).
				Dur("step_duration_ms", time.Since(stepStart)).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Dur("step_duration_ms", time.Since(stepStart)).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Dur("duration_ms", time.Since(start)).
		Msg("schema migrated")

	return nil
}
