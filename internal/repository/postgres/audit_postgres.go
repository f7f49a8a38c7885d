package postgres

import (
	"context"
	"database/sql"

	"casefiles/internal/model"
	"casefiles/internal/repository"
)

// AuditPostgres appends audit entries to the audit_logs table.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Record inserts a single audit entry.
func (r *AuditPostgres) Record(ctx context.Context, e *model.AuditEntry) error {
	const q = `
		INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.ActorID,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.Details,
		e.CreatedAt,
	)
	return err
}
