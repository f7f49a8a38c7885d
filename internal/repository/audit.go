package repository

import (
	"context"

	"casefiles/internal/model"
)

// AuditRepository appends audit entries.
type AuditRepository interface {
	Record(ctx context.Context, e *model.AuditEntry) error
}
