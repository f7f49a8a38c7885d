package model

import "time"

// Audit actions recorded by this service.
const (
	AuditBackupStart   = "backup_start"
	AuditBackupRestore = "backup_restore"
	AuditFileUpload    = "file_upload"
	AuditFileDelete    = "file_delete"
)

// AuditEntry is an append-only record of an action taken by a user.
type AuditEntry struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actor_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}
