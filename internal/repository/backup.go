package repository

import (
	"context"
	"time"

	"casefiles/internal/model"
)

// BackupCompletion carries everything written when a job completes.
type BackupCompletion struct {
	ArchivePath string
	Size        int64
	ArchiveSize int64
	CompletedAt time.Time
	Files       []model.FileBackup
}

// BackupRepository persists backup jobs and their file records.
type BackupRepository interface {
	Create(ctx context.Context, b *model.Backup) (*model.Backup, error)

	// FindByID returns a job by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Backup, error)

	// ListAll returns every job, newest created first.
	ListAll(ctx context.Context) ([]model.Backup, error)

	// LastCompleted returns the most recently created completed job whose kind is
	// one of kinds (any kind when empty), or sql.ErrNoRows.
	LastCompleted(ctx context.Context, kinds ...model.BackupKind) (*model.Backup, error)

	// Complete inserts the file records and marks the job completed in one transaction.
	Complete(ctx context.Context, id string, c BackupCompletion) error

	// MarkFailed sets status=failed with reason, leaving archive path and size unset.
	// Only in_progress jobs change; a completed job keeps its result.
	MarkFailed(ctx context.Context, id string, reason string) error

	// TransitionStatus moves a job from one status to another. It returns
	// sql.ErrNoRows when the job is not currently in from.
	TransitionStatus(ctx context.Context, id string, from, to model.BackupStatus) error

	// Counts aggregates job totals for statistics.
	Counts(ctx context.Context) (*model.BackupCounts, error)

	// ListFiles returns the file records of a job, oldest first.
	ListFiles(ctx context.Context, backupID string) ([]model.FileBackup, error)
}
