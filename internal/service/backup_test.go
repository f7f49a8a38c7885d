package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"casefiles/internal/model"
	repoMocks "casefiles/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var admin = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}

type backupFixture struct {
	repo   *repoMocks.MockBackupRepository
	audit  *repoMocks.MockAuditRepository
	runner *mockDispatcher
	svc    *backupService
}

func newBackupFixture(cfg BackupServiceConfig) *backupFixture {
	f := &backupFixture{
		repo:   new(repoMocks.MockBackupRepository),
		audit:  new(repoMocks.MockAuditRepository),
		runner: new(mockDispatcher),
	}
	f.svc = NewBackupService(f.repo, f.audit, f.runner, cfg, zerolog.Nop()).(*backupService)
	f.svc.now = func() time.Time { return time.Date(2026, 5, 6, 14, 30, 0, 0, time.UTC) }
	return f
}

func (f *backupFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
	f.runner.AssertExpectations(t)
}

func echoBackup(_ context.Context, b *model.Backup) *model.Backup {
	cp := *b
	return &cp
}

func int64Ptr(v int64) *int64 { return &v }

func TestBackupService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to a full local backup", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Create", ctx, mock.MatchedBy(func(b *model.Backup) bool {
			return b.ID != "" && b.Kind == model.BackupFull && b.StorageTarget == model.TargetLocal &&
				b.Status == model.BackupInProgress && b.CreatedBy == "clerk-1" && b.ArchivePath == nil && b.Size == nil
		})).Return(echoBackup, nil).Once()
		f.audit.On("Record", ctx, mock.MatchedBy(func(e *model.AuditEntry) bool {
			return e.Action == model.AuditBackupStart && e.ActorID == "clerk-1" && e.ResourceType == "backup"
		})).Return(nil).Once()
		f.runner.On("Dispatch", ctx, mock.AnythingOfType("string")).Return(nil).Once()

		job, err := f.svc.Submit(ctx, clerk, model.BackupRequest{})

		require.NoError(t, err)
		assert.Equal(t, model.BackupInProgress, job.Status)
		assert.Equal(t, model.BackupFull, job.Kind)
		f.runner.AssertCalled(t, "Dispatch", ctx, job.ID)
		f.assertExpectations(t)
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})

		_, err := f.svc.Submit(ctx, clerk, model.BackupRequest{Kind: "weekly"})

		assert.ErrorIs(t, err, ErrInvalidKind)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("object target requires configuration", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})

		_, err := f.svc.Submit(ctx, clerk, model.BackupRequest{StorageTarget: model.TargetObject})

		assert.ErrorIs(t, err, ErrUnsupportedTarget)
	})

	t.Run("object target when enabled", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{ObjectTarget: true})
		f.repo.On("Create", ctx, mock.MatchedBy(func(b *model.Backup) bool {
			return b.StorageTarget == model.TargetObject && b.Kind == model.BackupDifferential
		})).Return(echoBackup, nil).Once()
		f.audit.On("Record", ctx, mock.Anything).Return(nil).Once()
		f.runner.On("Dispatch", ctx, mock.Anything).Return(nil).Once()

		_, err := f.svc.Submit(ctx, admin, model.BackupRequest{Kind: model.BackupDifferential, StorageTarget: model.TargetObject})

		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("create error", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down")).Once()

		_, err := f.svc.Submit(ctx, clerk, model.BackupRequest{})

		assert.ErrorContains(t, err, "create backup: db down")
		f.runner.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("dispatch error marks the job failed", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Create", ctx, mock.Anything).Return(echoBackup, nil).Once()
		f.audit.On("Record", ctx, mock.Anything).Return(nil).Once()
		f.runner.On("Dispatch", ctx, mock.Anything).Return(errors.New("redis unavailable")).Once()
		f.repo.On("MarkFailed", ctx, mock.Anything, "dispatch: redis unavailable").Return(nil).Once()

		job, err := f.svc.Submit(ctx, clerk, model.BackupRequest{})

		assert.Nil(t, job)
		assert.ErrorContains(t, err, "dispatch backup")
		f.assertExpectations(t)
	})

	t.Run("audit failure does not fail submission", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Create", ctx, mock.Anything).Return(echoBackup, nil).Once()
		f.audit.On("Record", ctx, mock.Anything).Return(errors.New("audit down")).Once()
		f.runner.On("Dispatch", ctx, mock.Anything).Return(nil).Once()

		job, err := f.svc.Submit(ctx, clerk, model.BackupRequest{})

		require.NoError(t, err)
		assert.NotNil(t, job)
	})
}

func TestBackupService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("includes copied files", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		files := []model.FileBackup{
			{ID: "fb-1", DocumentID: "doc-a", BackupID: "job-1", BackupFilePath: "backup_job-1/a.pdf"},
			{ID: "fb-2", DocumentID: "doc-b", BackupID: "job-1", BackupFilePath: "backup_job-1/b.pdf"},
		}
		f.repo.On("FindByID", ctx, "job-1").Return(&model.Backup{ID: "job-1", Status: model.BackupCompleted}, nil).Once()
		f.repo.On("ListFiles", ctx, "job-1").Return(files, nil).Once()

		job, err := f.svc.Get(ctx, "job-1")

		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, files, job.Files)
		f.repo.AssertExpectations(t)
	})

	t.Run("file listing error", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("FindByID", ctx, "job-1").Return(&model.Backup{ID: "job-1"}, nil).Once()
		f.repo.On("ListFiles", ctx, "job-1").Return(nil, errors.New("db down")).Once()

		_, err := f.svc.Get(ctx, "job-1")

		assert.EqualError(t, err, "list backup files: db down")
	})

	t.Run("not found", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		_, err := f.svc.Get(ctx, "missing")

		assert.ErrorIs(t, err, ErrNotFound)
		f.repo.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything)
	})

	t.Run("empty id", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		_, err := f.svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestBackupService_List(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 6, 14, 5, 0, 0, time.UTC)
	completed := time.Date(2026, 5, 6, 15, 45, 0, 0, time.UTC)

	f := newBackupFixture(BackupServiceConfig{})
	f.repo.On("ListAll", ctx).Return([]model.Backup{
		{ID: "new", Kind: model.BackupFull, Status: model.BackupCompleted, CreatedAt: created, CompletedAt: &completed, Size: int64Ptr(3000)},
		{ID: "old", Kind: model.BackupIncremental, Status: model.BackupFailed, CreatedAt: created.Add(-time.Hour)},
	}, nil).Once()

	list, err := f.svc.List(ctx)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, BackupSummary{
		ID:          "new",
		Kind:        model.BackupFull,
		Status:      model.BackupCompleted,
		CreatedAt:   "2026-05-06 02:05 PM",
		CompletedAt: "2026-05-06 03:45 PM",
		Size:        "0.0 MB",
		SizeBytes:   int64Ptr(3000),
	}, list[0])
	assert.Equal(t, "N/A", list[1].CompletedAt)
	assert.Equal(t, "N/A", list[1].Size)
	assert.Nil(t, list[1].SizeBytes)
}

func TestBackupService_ListUsesConfiguredLocation(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("EAT", 3*60*60)

	f := newBackupFixture(BackupServiceConfig{Location: loc})
	f.repo.On("ListAll", ctx).Return([]model.Backup{
		{ID: "a", CreatedAt: time.Date(2026, 5, 6, 22, 0, 0, 0, time.UTC)},
	}, nil).Once()

	list, err := f.svc.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, "2026-05-07 01:00 AM", list[0].CreatedAt)
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in   *int64
		want string
	}{
		{nil, "N/A"},
		{int64Ptr(0), "0.0 MB"},
		{int64Ptr(5 << 20), "5.0 MB"},
		{int64Ptr(1023 << 20), "1023.0 MB"},
		{int64Ptr(1 << 30), "1.0 GB"},
		{int64Ptr(3 << 29), "1.5 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanSize(tt.in))
	}
}

func TestBackupService_Statistics(t *testing.T) {
	ctx := context.Background()

	t.Run("forbidden for non admin before any query", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})

		stats, err := f.svc.Statistics(ctx, clerk)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, stats)
		f.repo.AssertNotCalled(t, "Counts", mock.Anything)
	})

	t.Run("no jobs", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Counts", ctx).Return(&model.BackupCounts{}, nil).Once()

		stats, err := f.svc.Statistics(ctx, admin)

		require.NoError(t, err)
		assert.Equal(t, &BackupStatistics{SuccessRate: 100, TotalSizeGB: 0, LastBackup: "Never"}, stats)
	})

	t.Run("mixed outcomes", func(t *testing.T) {
		last := time.Date(2026, 5, 6, 9, 7, 0, 0, time.UTC)
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Counts", ctx).Return(&model.BackupCounts{
			Total:           3,
			Completed:       2,
			Failed:          1,
			CompletedBytes:  3 << 29,
			LastCompletedAt: &last,
		}, nil).Once()

		stats, err := f.svc.Statistics(ctx, admin)

		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 2, stats.Completed)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 66.7, stats.SuccessRate)
		assert.Equal(t, 1.5, stats.TotalSizeGB)
		assert.Equal(t, "2026-05-06 09:07", stats.LastBackup)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("Counts", ctx).Return(nil, errors.New("db down")).Once()

		_, err := f.svc.Statistics(ctx, admin)

		assert.EqualError(t, err, "db down")
	})
}

func TestBackupService_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("forbidden", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})

		_, err := f.svc.Restore(ctx, clerk, "job-1")

		assert.ErrorIs(t, err, ErrForbidden)
		f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing job", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		_, err := f.svc.Restore(ctx, admin, "missing")

		assert.ErrorIs(t, err, ErrNotFound)
		f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	for _, status := range []model.BackupStatus{model.BackupFailed, model.BackupInProgress, model.BackupRestoring} {
		t.Run("rejects "+string(status), func(t *testing.T) {
			f := newBackupFixture(BackupServiceConfig{})
			f.repo.On("FindByID", ctx, "job-1").Return(&model.Backup{ID: "job-1", Status: status}, nil).Once()

			_, err := f.svc.Restore(ctx, admin, "job-1")

			assert.ErrorIs(t, err, ErrInvalidState)
			f.repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		})
	}

	t.Run("completed job moves to restoring with one audit entry", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("FindByID", ctx, "job-1").Return(&model.Backup{ID: "job-1", Status: model.BackupCompleted}, nil).Once()
		f.repo.On("TransitionStatus", ctx, "job-1", model.BackupCompleted, model.BackupRestoring).Return(nil).Once()
		f.audit.On("Record", ctx, mock.MatchedBy(func(e *model.AuditEntry) bool {
			return e.Action == model.AuditBackupRestore && e.ResourceID == "job-1" &&
				e.ActorID == "admin-1" && e.Details == "Started backup restoration"
		})).Return(nil).Once()

		job, err := f.svc.Restore(ctx, admin, "job-1")

		require.NoError(t, err)
		assert.Equal(t, model.BackupRestoring, job.Status)
		f.audit.AssertNumberOfCalls(t, "Record", 1)
		f.assertExpectations(t)
	})

	t.Run("lost race against a concurrent restore", func(t *testing.T) {
		f := newBackupFixture(BackupServiceConfig{})
		f.repo.On("FindByID", ctx, "job-1").Return(&model.Backup{ID: "job-1", Status: model.BackupCompleted}, nil).Once()
		f.repo.On("TransitionStatus", ctx, "job-1", model.BackupCompleted, model.BackupRestoring).Return(sql.ErrNoRows).Once()

		_, err := f.svc.Restore(ctx, admin, "job-1")

		assert.ErrorIs(t, err, ErrInvalidState)
		f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}
