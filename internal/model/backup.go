package model

import "time"

// BackupKind selects which documents a backup job copies.
type BackupKind string

const (
	// BackupFull copies every stored document.
	BackupFull BackupKind = "full"
	// BackupIncremental copies documents created since the last completed job of any kind.
	BackupIncremental BackupKind = "incremental"
	// BackupDifferential copies documents created since the last completed full job.
	BackupDifferential BackupKind = "differential"
)

// Valid reports whether k is a known backup kind.
func (k BackupKind) Valid() bool {
	switch k {
	case BackupFull, BackupIncremental, BackupDifferential:
		return true
	}
	return false
}

// BackupStatus is the lifecycle state of a backup job.
type BackupStatus string

const (
	BackupInProgress BackupStatus = "in_progress"
	BackupCompleted  BackupStatus = "completed"
	BackupFailed     BackupStatus = "failed"
	BackupRestoring  BackupStatus = "restoring"
)

// Storage targets for produced archives.
const (
	TargetLocal  = "local"
	TargetObject = "object"
)

// Backup is a single backup job and its result.
// ArchivePath, Size, ArchiveSize and CompletedAt are set together when the job completes.
type Backup struct {
	ID            string       `json:"id"`
	Kind          BackupKind   `json:"backup_type"`
	Status        BackupStatus `json:"status"`
	StorageTarget string       `json:"storage_location"`
	Description   string       `json:"description,omitempty"`
	CreatedBy     string       `json:"created_by"`
	ArchivePath   *string      `json:"backup_path"`
	Size          *int64       `json:"size"`
	ArchiveSize   *int64       `json:"archive_size"`
	ErrorMessage  *string      `json:"error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at"`

	// Files is only populated when a single job is fetched.
	Files []FileBackup `json:"files,omitempty"`
}

// FileBackup links a document to the backup job that copied it.
type FileBackup struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"file_id"`
	BackupID       string    `json:"backup_id"`
	BackupFilePath string    `json:"backup_file_path"`
	CreatedAt      time.Time `json:"created_at"`
}

// BackupRequest is the input of a backup submission.
type BackupRequest struct {
	Kind          BackupKind
	StorageTarget string
	Description   string
}

// BackupOutcome is the result of one archival run. Exactly one of the
// success fields or Reason is meaningful, depending on OK.
type BackupOutcome struct {
	OK          bool
	ArchivePath string
	Size        int64
	ArchiveSize int64
	Files       []FileBackup
	Reason      string
}

// Succeeded builds a successful outcome.
func Succeeded(archivePath string, size, archiveSize int64, files []FileBackup) BackupOutcome {
	return BackupOutcome{OK: true, ArchivePath: archivePath, Size: size, ArchiveSize: archiveSize, Files: files}
}

// Failed builds a failed outcome carrying reason.
func Failed(reason string) BackupOutcome {
	return BackupOutcome{Reason: reason}
}

// BackupCounts is the raw aggregate used to build backup statistics.
type BackupCounts struct {
	Total           int
	Completed       int
	Failed          int
	CompletedBytes  int64
	LastCompletedAt *time.Time
}
