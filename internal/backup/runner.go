package backup

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"casefiles/internal/model"
)

// JobExecutor runs one job to completion; satisfied by *Executor.
type JobExecutor interface {
	Execute(ctx context.Context, jobID string) model.BackupOutcome
}

// LocalRunner executes jobs in-process, at most concurrency at a time.
type LocalRunner struct {
	exec    JobExecutor
	sem     *semaphore.Weighted
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewLocalRunner creates a LocalRunner. A non-positive concurrency means one job
// at a time; a non-positive timeout disables the per-job deadline.
func NewLocalRunner(exec JobExecutor, concurrency int, timeout time.Duration, log zerolog.Logger) *LocalRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LocalRunner{
		exec:    exec,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		timeout: timeout,
		log:     log,
	}
}

// Dispatch schedules jobID and returns immediately. The job outlives ctx
// cancellation but keeps its values (trace span, request id).
func (r *LocalRunner) Dispatch(ctx context.Context, jobID string) error {
	jobCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// the deadline starts once a slot is free
		if err := r.sem.Acquire(jobCtx, 1); err != nil {
			r.log.Error().Err(err).Str("event", "runner_acquire_failed").Str("backup_id", jobID).Msg("")
			return
		}
		defer r.sem.Release(1)

		runCtx, cancel := withTimeout(jobCtx, r.timeout)
		defer cancel()

		out := r.exec.Execute(runCtx, jobID)
		r.log.Debug().Str("event", "runner_job_done").Str("backup_id", jobID).Bool("ok", out.OK).Msg("")
	}()
	return nil
}

// Wait blocks until every dispatched job has finished.
func (r *LocalRunner) Wait() {
	r.wg.Wait()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
