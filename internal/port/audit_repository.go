package port

import (
	"context"

	"github.com/google/uuid"

	"regnify/internal/domain"
)

// AuditRepository defines the contract for audit log persistence.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditLog, int, error)
}
