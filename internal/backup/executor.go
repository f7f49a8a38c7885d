package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"casefiles/internal/metrics"
	"casefiles/internal/model"
	"casefiles/internal/repository"
)

// finalizeTimeout bounds the status write that follows a job, which runs even
// after the job context expired.
const finalizeTimeout = 15 * time.Second

// archiver produces the archive of a job; satisfied by *Archiver.
type archiver interface {
	Archive(ctx context.Context, job *model.Backup, docs []model.Document) model.BackupOutcome
}

// Executor runs a single backup job to its terminal state.
type Executor struct {
	backups  repository.BackupRepository
	docs     repository.DocumentRepository
	archiver archiver
	metrics  *metrics.BackupMetrics
	log      zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewExecutor creates an Executor. m may be nil.
func NewExecutor(backups repository.BackupRepository, docs repository.DocumentRepository, a archiver, m *metrics.BackupMetrics, log zerolog.Logger) *Executor {
	return &Executor{
		backups:  backups,
		docs:     docs,
		archiver: a,
		metrics:  m,
		log:      log,
		tracer:   otel.Tracer("casefiles/backup"),
		now:      time.Now,
	}
}

// Execute runs the job identified by jobID. Failures are recorded on the job
// row and returned as a failed outcome; Execute never panics.
func (e *Executor) Execute(ctx context.Context, jobID string) (out model.BackupOutcome) {
	ctx, span := e.tracer.Start(ctx, "backup.execute", trace.WithAttributes(attribute.String("backup.id", jobID)))
	defer span.End()

	job, err := e.backups.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			e.log.Warn().Str("event", "backup_job_missing").Str("backup_id", jobID).Msg("")
			return model.Failed("not found")
		}
		e.log.Error().Err(err).Str("event", "backup_job_load_failed").Str("backup_id", jobID).Msg("")
		span.SetStatus(codes.Error, err.Error())
		out := model.Failed(fmt.Sprintf("load job: %v", err))
		// nothing else would move the row out of in_progress
		e.markFailed(ctx, jobID, out.Reason)
		return out
	}
	if job.Status != model.BackupInProgress {
		// already finished, e.g. a redelivered queue message
		e.log.Info().Str("event", "backup_job_skipped").Str("backup_id", jobID).Str("status", string(job.Status)).Msg("")
		return model.Failed(fmt.Sprintf("job is %s", job.Status))
	}
	span.SetAttributes(attribute.String("backup.kind", string(job.Kind)), attribute.String("backup.target", job.StorageTarget))

	start := e.now()
	done := e.metrics.Started(string(job.Kind))
	log := e.log.With().Str("backup_id", job.ID).Str("kind", string(job.Kind)).Logger()
	log.Info().Str("event", "backup_started").Msg("")

	defer func() {
		if r := recover(); r != nil {
			out = model.Failed(fmt.Sprintf("panic: %v", r))
			log.Error().Str("event", "backup_panic").Interface("panic", r).Msg("")
		}
		out = e.finalize(ctx, job.ID, out)

		var (
			status = model.BackupCompleted
			ev     *zerolog.Event
		)
		if out.OK {
			ev = log.Info().Int64("size", out.Size).Int("files", len(out.Files))
		} else {
			status = model.BackupFailed
			ev = log.Error().Str("error", out.Reason)
			span.SetStatus(codes.Error, out.Reason)
		}
		ev.Str("event", "backup_finished").Str("status", string(status)).Dur("duration_ms", e.now().Sub(start)).Msg("")
		done(string(status), out.Size)
	}()

	docs, err := e.selectDocuments(ctx, job)
	if err != nil {
		return model.Failed(fmt.Sprintf("select documents: %v", err))
	}
	span.SetAttributes(attribute.Int("backup.documents", len(docs)))

	return e.archiver.Archive(ctx, job, docs)
}

// selectDocuments picks the documents a job of the given kind must copy.
// Jobs without a baseline copy everything.
func (e *Executor) selectDocuments(ctx context.Context, job *model.Backup) ([]model.Document, error) {
	var baseline *model.Backup
	var err error
	switch job.Kind {
	case model.BackupIncremental:
		baseline, err = e.backups.LastCompleted(ctx)
	case model.BackupDifferential:
		baseline, err = e.backups.LastCompleted(ctx, model.BackupFull)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find baseline: %w", err)
	}

	var since *time.Time
	if baseline != nil {
		since = &baseline.CreatedAt
	}
	return e.docs.ListCreatedAfter(ctx, since)
}

// finalize writes the terminal status. A failed completion turns the outcome into a failure.
func (e *Executor) finalize(ctx context.Context, id string, out model.BackupOutcome) model.BackupOutcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if out.OK {
		err := e.backups.Complete(ctx, id, repository.BackupCompletion{
			ArchivePath: out.ArchivePath,
			Size:        out.Size,
			ArchiveSize: out.ArchiveSize,
			CompletedAt: e.now().UTC(),
			Files:       out.Files,
		})
		if err == nil {
			return out
		}
		out = model.Failed(fmt.Sprintf("finalize: %v", err))
	}

	e.markFailed(ctx, id, out.Reason)
	return out
}

// markFailed records reason on an in_progress job. It runs on a detached context
// so an expired job deadline cannot prevent the write; errors are only logged.
func (e *Executor) markFailed(ctx context.Context, id, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if err := e.backups.MarkFailed(ctx, id, reason); err != nil {
		e.log.Error().Err(err).Str("event", "backup_mark_failed_error").Str("backup_id", id).Msg("")
	}
}
