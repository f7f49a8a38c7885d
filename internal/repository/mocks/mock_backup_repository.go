package mocks

import (
	"context"

	"casefiles/internal/model"
	"casefiles/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockBackupRepository struct {
	mock.Mock
}

func (m *MockBackupRepository) Create(ctx context.Context, b *model.Backup) (*model.Backup, error) {
	args := m.Called(ctx, b)
	if f, ok := args.Get(0).(func(context.Context, *model.Backup) *model.Backup); ok {
		return f(ctx, b), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Backup), args.Error(1)
}

func (m *MockBackupRepository) FindByID(ctx context.Context, id string) (*model.Backup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Backup), args.Error(1)
}

func (m *MockBackupRepository) ListAll(ctx context.Context) ([]model.Backup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Backup), args.Error(1)
}

func (m *MockBackupRepository) LastCompleted(ctx context.Context, kinds ...model.BackupKind) (*model.Backup, error) {
	args := m.Called(ctx, kinds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Backup), args.Error(1)
}

func (m *MockBackupRepository) Complete(ctx context.Context, id string, c repository.BackupCompletion) error {
	args := m.Called(ctx, id, c)
	return args.Error(0)
}

func (m *MockBackupRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockBackupRepository) TransitionStatus(ctx context.Context, id string, from, to model.BackupStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockBackupRepository) Counts(ctx context.Context) (*model.BackupCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BackupCounts), args.Error(1)
}

func (m *MockBackupRepository) ListFiles(ctx context.Context, backupID string) ([]model.FileBackup, error) {
	args := m.Called(ctx, backupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileBackup), args.Error(1)
}
