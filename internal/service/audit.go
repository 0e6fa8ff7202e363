package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/port"
)

// recordAudit stamps entry with the actor and stores it. Failures are logged
// under op and never fail the calling operation.
func recordAudit(ctx context.Context, repo port.AuditRepository, op string, actor Actor, entry *domain.AuditLog) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = auditSuccess
	}
	entry.PerformedBy = actor.Username
	entry.IPAddress = actor.IPAddress
	entry.UserAgent = actor.UserAgent
	if err := repo.Create(ctx, entry); err != nil {
		log.Printf("%s: audit %s: %v", op, entry.Action, err)
	}
}
