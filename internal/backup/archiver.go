// Package backup executes backup jobs: it selects documents, stages copies,
// compresses them into an archive and records the result.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"casefiles/internal/archive"
	"casefiles/internal/model"
	"casefiles/internal/storage"
)

const archiveKeyPrefix = "backups/"

// ErrObjectTargetDisabled is reported when a job targets object storage but no archive bucket is configured.
var ErrObjectTargetDisabled = errors.New("object storage target is not configured")

// Archiver copies documents into a staging directory and compresses them.
type Archiver struct {
	documents  storage.Storage
	archives   storage.Storage // nil when the object target is disabled
	stagingDir string
	backupDir  string
	log        zerolog.Logger
	now        func() time.Time
}

// NewArchiver creates an Archiver. archives may be nil.
func NewArchiver(documents, archives storage.Storage, stagingDir, backupDir string, log zerolog.Logger) *Archiver {
	return &Archiver{
		documents:  documents,
		archives:   archives,
		stagingDir: stagingDir,
		backupDir:  backupDir,
		log:        log,
		now:        time.Now,
	}
}

// Archive produces the archive for job from docs. Documents whose stored object is
// missing are skipped. The staging directory is always removed before returning.
func (a *Archiver) Archive(ctx context.Context, job *model.Backup, docs []model.Document) model.BackupOutcome {
	if job.StorageTarget == model.TargetObject && a.archives == nil {
		return model.Failed(ErrObjectTargetDisabled.Error())
	}
	ts := a.now().UTC().Format("20060102_150405")

	if err := os.MkdirAll(a.stagingDir, 0o750); err != nil {
		return model.Failed(fmt.Sprintf("create staging root: %v", err))
	}
	stage := filepath.Join(a.stagingDir, fmt.Sprintf("backup_%s_%s", job.ID, ts))
	if err := os.Mkdir(stage, 0o750); err != nil {
		return model.Failed(fmt.Sprintf("create staging dir: %v", err))
	}
	defer func() {
		if err := os.RemoveAll(stage); err != nil {
			a.log.Warn().Err(err).Str("event", "staging_cleanup_failed").Str("path", stage).Msg("")
		}
	}()

	var (
		size  int64
		files = make([]model.FileBackup, 0, len(docs))
	)
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return model.Failed(fmt.Sprintf("interrupted: %v", err))
		}
		doc := &docs[i]

		ok, err := a.documents.Exists(ctx, doc.StoragePath)
		if err != nil {
			return model.Failed(fmt.Sprintf("check document %s: %v", doc.ID, err))
		}
		if !ok {
			a.log.Warn().
				Str("event", "document_missing").
				Str("backup_id", job.ID).
				Str("document_id", doc.ID).
				Str("storage_path", doc.StoragePath).
				Msg("stored object not found, skipping")
			continue
		}

		dst := filepath.Join(stage, fmt.Sprintf("file_%s_%s_%s", job.ID, doc.ID, filepath.Base(doc.Filename)))
		n, err := a.copyDocument(ctx, doc.StoragePath, dst)
		if err != nil {
			return model.Failed(fmt.Sprintf("copy document %s: %v", doc.ID, err))
		}
		size += n
		files = append(files, model.FileBackup{
			ID:             uuid.NewString(),
			DocumentID:     doc.ID,
			BackupID:       job.ID,
			BackupFilePath: dst,
			CreatedAt:      a.now().UTC(),
		})
	}

	if err := os.MkdirAll(a.backupDir, 0o750); err != nil {
		return model.Failed(fmt.Sprintf("create backup dir: %v", err))
	}
	name := fmt.Sprintf("backup_%s_%s.zip", ts, job.ID)
	archivePath := filepath.Join(a.backupDir, name)
	archiveSize, err := archive.CompressDirectory(ctx, stage, archivePath)
	if err != nil {
		return model.Failed(err.Error())
	}

	if job.StorageTarget == model.TargetObject {
		key, err := a.upload(ctx, archivePath, name, archiveSize)
		if rmErr := os.Remove(archivePath); rmErr != nil {
			a.log.Warn().Err(rmErr).Str("event", "archive_cleanup_failed").Str("path", archivePath).Msg("")
		}
		if err != nil {
			return model.Failed(err.Error())
		}
		archivePath = key
	}

	return model.Succeeded(archivePath, size, archiveSize, files)
}

func (a *Archiver) copyDocument(ctx context.Context, key, dst string) (int64, error) {
	rc, _, err := a.documents.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, rc)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

func (a *Archiver) upload(ctx context.Context, archivePath, name string, size int64) (string, error) {
	if a.archives == nil {
		return "", ErrObjectTargetDisabled
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := a.archives.Put(ctx, path.Join(archiveKeyPrefix, name), f, storage.PutObjectOptions{
		Size:        size,
		ContentType: "application/zip",
	})
	if err != nil {
		return "", fmt.Errorf("upload archive: %w", err)
	}
	return info.Key, nil
}
