package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"casefiles/internal/model"
	"casefiles/internal/repository"
)

const (
	listTimeLayout  = "2006-01-02 03:04 PM"
	statsTimeLayout = "2006-01-02 15:04"
	notAvailable    = "N/A"
)

// JobDispatcher hands a persisted job to a background runner.
type JobDispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

// BackupSummary is one row of the backup listing.
type BackupSummary struct {
	ID          string             `json:"id"`
	Kind        model.BackupKind   `json:"backup_type"`
	Status      model.BackupStatus `json:"status"`
	CreatedAt   string             `json:"created_at"`
	CompletedAt string             `json:"completed_at"`
	Size        string             `json:"size"`
	SizeBytes   *int64             `json:"size_bytes"`
}

// BackupStatistics is the admin report over all jobs.
type BackupStatistics struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	TotalSizeGB float64 `json:"total_size_gb"`
	LastBackup  string  `json:"last_backup"`
	SuccessRate float64 `json:"success_rate"`
}

// BackupService coordinates backup jobs: it records them, hands them to a runner
// and reports on them. The archival itself happens in the background.
type BackupService interface {
	// Submit records a new in_progress job and dispatches it. It returns without
	// waiting for the archive to be produced.
	Submit(ctx context.Context, caller model.Identity, req model.BackupRequest) (*model.Backup, error)

	// Get returns a single job with the documents it copied.
	Get(ctx context.Context, id string) (*model.Backup, error)

	// List returns every job, newest first, formatted for display.
	List(ctx context.Context) ([]BackupSummary, error)

	// Statistics aggregates all jobs. Admin only.
	Statistics(ctx context.Context, caller model.Identity) (*BackupStatistics, error)

	// Restore marks a completed job as restoring. Admin only. No data is replaced.
	Restore(ctx context.Context, caller model.Identity, id string) (*model.Backup, error)
}

// BackupServiceConfig holds the presentation and target settings of the coordinator.
type BackupServiceConfig struct {
	Location *time.Location
	// ObjectTarget enables the "object" storage target.
	ObjectTarget bool
}

type backupService struct {
	repo   repository.BackupRepository
	audit  repository.AuditRepository
	runner JobDispatcher
	cfg    BackupServiceConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewBackupService constructs a BackupService.
func NewBackupService(repo repository.BackupRepository, audit repository.AuditRepository, runner JobDispatcher, cfg BackupServiceConfig, log zerolog.Logger) BackupService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &backupService{repo: repo, audit: audit, runner: runner, cfg: cfg, log: log, now: time.Now}
}

func (s *backupService) Submit(ctx context.Context, caller model.Identity, req model.BackupRequest) (*model.Backup, error) {
	if req.Kind == "" {
		req.Kind = model.BackupFull
	}
	if req.StorageTarget == "" {
		req.StorageTarget = model.TargetLocal
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, req.Kind)
	}
	switch {
	case req.StorageTarget == model.TargetLocal:
	case req.StorageTarget == model.TargetObject && s.cfg.ObjectTarget:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, req.StorageTarget)
	}

	job, err := s.repo.Create(ctx, &model.Backup{
		ID:            uuid.NewString(),
		Kind:          req.Kind,
		Status:        model.BackupInProgress,
		StorageTarget: req.StorageTarget,
		Description:   req.Description,
		CreatedBy:     caller.UserID,
		CreatedAt:     s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}

	s.record(ctx, caller, model.AuditBackupStart, job.ID, fmt.Sprintf("Started %s backup: %s", job.Kind, job.Description))

	if err := s.runner.Dispatch(ctx, job.ID); err != nil {
		if mErr := s.repo.MarkFailed(ctx, job.ID, fmt.Sprintf("dispatch: %v", err)); mErr != nil {
			s.log.Error().Err(mErr).Str("event", "backup_mark_failed_error").Str("backup_id", job.ID).Msg("")
		}
		return nil, fmt.Errorf("dispatch backup: %w", err)
	}

	s.log.Info().
		Str("event", "backup_submitted").
		Str("backup_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("target", job.StorageTarget).
		Str("user_id", caller.UserID).
		Msg("")
	return job, nil
}

func (s *backupService) Get(ctx context.Context, id string) (*model.Backup, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := s.repo.ListFiles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list backup files: %w", err)
	}
	job.Files = files
	return job, nil
}

func (s *backupService) find(ctx context.Context, id string) (*model.Backup, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *backupService) List(ctx context.Context) ([]BackupSummary, error) {
	jobs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BackupSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, BackupSummary{
			ID:          j.ID,
			Kind:        j.Kind,
			Status:      j.Status,
			CreatedAt:   s.formatTime(&j.CreatedAt),
			CompletedAt: s.formatTime(j.CompletedAt),
			Size:        HumanSize(j.Size),
			SizeBytes:   j.Size,
		})
	}
	return out, nil
}

func (s *backupService) Statistics(ctx context.Context, caller model.Identity) (*BackupStatistics, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	c, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BackupStatistics{
		Total:       c.Total,
		Completed:   c.Completed,
		Failed:      c.Failed,
		TotalSizeGB: round(float64(c.CompletedBytes)/(1<<30), 2),
		LastBackup:  "Never",
		SuccessRate: 100,
	}
	if c.Total > 0 {
		stats.SuccessRate = round(float64(c.Completed)/float64(c.Total)*100, 1)
	}
	if c.LastCompletedAt != nil {
		stats.LastBackup = c.LastCompletedAt.In(s.cfg.Location).Format(statsTimeLayout)
	}
	return stats, nil
}

func (s *backupService) Restore(ctx context.Context, caller model.Identity, id string) (*model.Backup, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != model.BackupCompleted {
		return nil, ErrInvalidState
	}

	// conditional update: a concurrent restore of the same job loses here
	if err := s.repo.TransitionStatus(ctx, id, model.BackupCompleted, model.BackupRestoring); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("mark restoring: %w", err)
	}
	job.Status = model.BackupRestoring

	s.record(ctx, caller, model.AuditBackupRestore, id, "Started backup restoration")
	s.log.Warn().Str("event", "backup_restore_requested").Str("backup_id", id).Str("user_id", caller.UserID).Msg("")
	return job, nil
}

// record appends an audit entry. Failures are logged and never fail the operation.
func (s *backupService) record(ctx context.Context, caller model.Identity, action, resourceID, details string) {
	err := s.audit.Record(ctx, &model.AuditEntry{
		ID:           uuid.NewString(),
		ActorID:      caller.UserID,
		Action:       action,
		ResourceType: "backup",
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("event", "audit_record_failed").Str("action", action).Str("backup_id", resourceID).Msg("")
	}
}

func (s *backupService) formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return notAvailable
	}
	return t.In(s.cfg.Location).Format(listTimeLayout)
}

// HumanSize renders a byte count as MB below 1024 MB and as GB above.
func HumanSize(b *int64) string {
	if b == nil {
		return notAvailable
	}
	mb := float64(*b) / (1 << 20)
	if mb < 1024 {
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", mb/1024)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
