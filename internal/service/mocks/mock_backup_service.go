package mocks

import (
	"context"

	"casefiles/internal/model"
	"casefiles/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) Submit(ctx context.Context, caller model.Identity, req model.BackupRequest) (*model.Backup, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Backup), args.Error(1)
}

func (m *MockBackupService) Get(ctx context.Context, id string) (*model.Backup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Backup), args.Error(1)
}

func (m *MockBackupService) List(ctx context.Context) ([]service.BackupSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.BackupSummary), args.Error(1)
}

func (m *MockBackupService) Statistics(ctx context.Context, caller model.Identity) (*service.BackupStatistics, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BackupStatistics), args.Error(1)
}

func (m *MockBackupService) Restore(ctx context.Context, caller model.Identity, id string) (*model.Backup, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Backup), args.Error(1)
}
