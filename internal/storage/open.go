package storage

import (
	"fmt"

	"casefiles/internal/config"
)

// Open builds the document store selected by cfg.Storage.Driver and, when an
// archive bucket is configured, the object store for backup archives.
// archives is nil when the object target is disabled.
func Open(cfg *config.AppConfig) (documents, archives Storage, err error) {
	switch cfg.Storage.Driver {
	case "local":
		documents, err = NewLocal(cfg.Storage.UploadDir)
	case "minio", "":
		documents, err = NewMinIO(cfg.MinIO, cfg.MinIO.Bucket)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("document storage: %w", err)
	}

	if cfg.MinIO.ArchiveBucket != "" {
		archives, err = NewMinIO(cfg.MinIO, cfg.MinIO.ArchiveBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("archive storage: %w", err)
		}
	}
	return documents, archives, nil
}
