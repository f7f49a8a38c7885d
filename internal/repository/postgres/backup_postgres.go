package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"casefiles/internal/model"
	"casefiles/internal/repository"
)

const backupColumns = `id, kind, status, storage_target, description, created_by, archive_path, size, archive_size, error_message, created_at, completed_at`

// BackupPostgres is a PostgreSQL implementation of repository.BackupRepository.
type BackupPostgres struct {
	db *sql.DB
}

// NewBackupPostgres creates a new BackupPostgres repository.
func NewBackupPostgres(db *sql.DB) *BackupPostgres {
	return &BackupPostgres{db: db}
}

var _ repository.BackupRepository = (*BackupPostgres)(nil)

func scanBackup(row rowScanner) (*model.Backup, error) {
	var b model.Backup
	if err := row.Scan(
		&b.ID,
		&b.Kind,
		&b.Status,
		&b.StorageTarget,
		&b.Description,
		&b.CreatedBy,
		&b.ArchivePath,
		&b.Size,
		&b.ArchiveSize,
		&b.ErrorMessage,
		&b.CreatedAt,
		&b.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new job row and returns the stored record.
func (r *BackupPostgres) Create(ctx context.Context, b *model.Backup) (*model.Backup, error) {
	const q = `
		INSERT INTO backups (id, kind, status, storage_target, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + backupColumns
	row := r.db.QueryRowContext(ctx, q,
		b.ID,
		b.Kind,
		b.Status,
		b.StorageTarget,
		b.Description,
		b.CreatedBy,
		b.CreatedAt,
	)
	return scanBackup(row)
}

// FindByID fetches a single job by its ID.
func (r *BackupPostgres) FindByID(ctx context.Context, id string) (*model.Backup, error) {
	const q = `SELECT ` + backupColumns + ` FROM backups WHERE id = $1`
	return scanBackup(r.db.QueryRowContext(ctx, q, id))
}

// ListAll returns every job, newest created first.
func (r *BackupPostgres) ListAll(ctx context.Context) ([]model.Backup, error) {
	const q = `SELECT ` + backupColumns + ` FROM backups ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Backup, 0)
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// LastCompleted returns the newest job that produced an archive, optionally filtered by kind.
// Restoring jobs count: they completed before the restore was requested.
func (r *BackupPostgres) LastCompleted(ctx context.Context, kinds ...model.BackupKind) (*model.Backup, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + backupColumns + ` FROM backups WHERE status IN ('completed', 'restoring')`)

	args := make([]any, 0, len(kinds))
	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			args = append(args, k)
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		sb.WriteString(` AND kind IN (` + strings.Join(placeholders, ", ") + `)`)
	}
	sb.WriteString(` ORDER BY created_at DESC, id DESC LIMIT 1`)

	return scanBackup(r.db.QueryRowContext(ctx, sb.String(), args...))
}

// Complete writes the file records and the completion fields in a single transaction,
// so a reader never observes status=completed without a size.
func (r *BackupPostgres) Complete(ctx context.Context, id string, c repository.BackupCompletion) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qFile = `
		INSERT INTO file_backups (id, document_id, backup_id, backup_file_path, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, f := range c.Files {
		if _, err = tx.ExecContext(ctx, qFile, f.ID, f.DocumentID, id, f.BackupFilePath, f.CreatedAt); err != nil {
			return fmt.Errorf("insert file backup %s: %w", f.DocumentID, err)
		}
	}

	const qDone = `
		UPDATE backups
		SET status = 'completed', archive_path = $2, size = $3, archive_size = $4,
		    completed_at = $5, error_message = NULL
		WHERE id = $1 AND status = 'in_progress'
	`
	res, err := tx.ExecContext(ctx, qDone, id, c.ArchivePath, c.Size, c.ArchiveSize, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if n == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MarkFailed sets an in_progress job to failed and clears any result fields.
// Jobs that already reached another status are left untouched.
func (r *BackupPostgres) MarkFailed(ctx context.Context, id string, reason string) error {
	const q = `
		UPDATE backups
		SET status = 'failed', error_message = $2, archive_path = NULL, size = NULL,
		    archive_size = NULL, completed_at = NULL
		WHERE id = $1 AND status = 'in_progress'
	`
	_, err := r.db.ExecContext(ctx, q, id, reason)
	return err
}

// TransitionStatus performs a compare-and-set on the job status.
func (r *BackupPostgres) TransitionStatus(ctx context.Context, id string, from, to model.BackupStatus) error {
	const q = `UPDATE backups SET status = $3 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, q, id, from, to)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Counts aggregates totals over all jobs.
func (r *BackupPostgres) Counts(ctx context.Context) (*model.BackupCounts, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COALESCE(SUM(size) FILTER (WHERE status = 'completed'), 0),
			MAX(completed_at) FILTER (WHERE status = 'completed')
		FROM backups
	`
	var c model.BackupCounts
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&c.Total,
		&c.Completed,
		&c.Failed,
		&c.CompletedBytes,
		&c.LastCompletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListFiles returns the file records of a job, oldest first.
func (r *BackupPostgres) ListFiles(ctx context.Context, backupID string) ([]model.FileBackup, error) {
	const q = `
		SELECT id, document_id, backup_id, backup_file_path, created_at
		FROM file_backups
		WHERE backup_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, backupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileBackup, 0)
	for rows.Next() {
		var f model.FileBackup
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.BackupID, &f.BackupFilePath, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
