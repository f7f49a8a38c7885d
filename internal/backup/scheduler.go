package backup

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"

	"casefiles/internal/model"
)

// Submitter creates and dispatches backup jobs; satisfied by service.BackupService.
type Submitter interface {
	Submit(ctx context.Context, caller model.Identity, req model.BackupRequest) (*model.Backup, error)
}

// Scheduler submits backups on a cron schedule as the system identity.
type Scheduler struct {
	cron *cron.Cron
	sub  Submitter
	kind model.BackupKind
	log  zerolog.Logger

	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

// NewScheduler parses spec (six fields with seconds, or a descriptor like "@daily").
func NewScheduler(sub Submitter, spec string, kind model.BackupKind, log zerolog.Logger) (*Scheduler, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid scheduled backup kind %q", kind)
	}
	s := &Scheduler{cron: cron.New(), sub: sub, kind: kind, log: log}
	if err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info().Str("event", "backup_schedule_started").Str("kind", string(s.kind)).Msg("")
	s.cron.Start()
}

// Stop halts the schedule and waits for a tick that is mid-submit. Jobs already
// dispatched keep running.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.running.Wait()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	job, err := s.sub.Submit(context.Background(), model.SystemIdentity, model.BackupRequest{
		Kind:          s.kind,
		StorageTarget: model.TargetLocal,
		Description:   "scheduled backup",
	})
	if err != nil {
		s.log.Error().Err(err).Str("event", "scheduled_backup_failed").Msg("")
		return
	}
	s.log.Info().Str("event", "scheduled_backup_submitted").Str("backup_id", job.ID).Msg("")
}
