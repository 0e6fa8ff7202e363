package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regnify/internal/domain"
	"regnify/internal/port"
)

type auditRepo struct {
	db *sqlx.DB
}

// NewAuditRepo creates a new PostgreSQL-backed AuditRepository.
func NewAuditRepo(db *sqlx.DB) port.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, entity_type, entity_id, performed_by, performed_at,
			status, old_value, new_value, error_message, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.Action, entry.EntityType, entry.EntityID, entry.PerformedBy, entry.PerformedAt,
		entry.Status, entry.OldValue, entry.NewValue, entry.ErrorMessage, entry.IPAddress, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("auditRepo.Create: %w", err)
	}
	return nil
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditLog, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM audit_logs WHERE entity_type = $1 AND entity_id = $2`,
		entityType, entityID)
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.ListByEntity count: %w", err)
	}

	var entries []domain.AuditLog
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM audit_logs
		 WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY performed_at DESC
		 LIMIT $3 OFFSET $4`,
		entityType, entityID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.ListByEntity: %w", err)
	}
	return entries, total, nil
}
