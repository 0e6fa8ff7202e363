package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/port"
)

const updateDateLayout = "2006-01-02"

// SystemUpdateInput is the DTO for creating or replacing a release note.
type SystemUpdateInput struct {
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description"`
	UpdateDate  string            `json:"update_date" binding:"required"`
	Type        domain.UpdateType `json:"type" binding:"required"`
	Version     string            `json:"version" binding:"max=50"`
}

// SystemUpdateService manages the release notes shown to users.
type SystemUpdateService interface {
	List(ctx context.Context) ([]domain.SystemUpdate, error)
	ListByType(ctx context.Context, t domain.UpdateType) ([]domain.SystemUpdate, error)
	ListByDateRange(ctx context.Context, from, to string) ([]domain.SystemUpdate, error)
	ListByVersion(ctx context.Context, version string) ([]domain.SystemUpdate, error)
	Create(ctx context.Context, input SystemUpdateInput, actor Actor) (*domain.SystemUpdate, error)
	Update(ctx context.Context, id uuid.UUID, input SystemUpdateInput, actor Actor) (*domain.SystemUpdate, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
}

type systemUpdateService struct {
	repo      port.SystemUpdateRepository
	auditRepo port.AuditRepository
}

// NewSystemUpdateService creates a new SystemUpdateService implementation.
func NewSystemUpdateService(repo port.SystemUpdateRepository, auditRepo port.AuditRepository) SystemUpdateService {
	return &systemUpdateService{repo: repo, auditRepo: auditRepo}
}

func (s *systemUpdateService) List(ctx context.Context) ([]domain.SystemUpdate, error) {
	return s.repo.ListActive(ctx)
}

func (s *systemUpdateService) ListByType(ctx context.Context, t domain.UpdateType) ([]domain.SystemUpdate, error) {
	t = domain.UpdateType(strings.ToUpper(string(t)))
	if !domain.ValidUpdateTypes[t] {
		return nil, domain.ErrInvalidUpdateType
	}
	return s.repo.ListByType(ctx, t)
}

// ListByDateRange takes YYYY-MM-DD bounds; both are inclusive.
func (s *systemUpdateService) ListByDateRange(ctx context.Context, from, to string) ([]domain.SystemUpdate, error) {
	start, err := time.Parse(updateDateLayout, from)
	if err != nil {
		return nil, domain.ErrInvalidDateRange
	}
	end, err := time.Parse(updateDateLayout, to)
	if err != nil || end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.repo.ListByDateRange(ctx, start, end)
}

func (s *systemUpdateService) ListByVersion(ctx context.Context, version string) ([]domain.SystemUpdate, error) {
	return s.repo.ListByVersion(ctx, strings.TrimSpace(version))
}

func (s *systemUpdateService) Create(ctx context.Context, input SystemUpdateInput, actor Actor) (*domain.SystemUpdate, error) {
	u := &domain.SystemUpdate{IsActive: true, CreatedBy: actor.Username}
	if err := applySystemUpdateInput(u, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditSystemUpdateCreate, u, actor, "", "System update created: "+u.Title)
	return u, nil
}

func (s *systemUpdateService) Update(ctx context.Context, id uuid.UUID, input SystemUpdateInput, actor Actor) (*domain.SystemUpdate, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := u.Title
	if err := applySystemUpdateInput(u, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditSystemUpdateUpdate, u, actor, "Title: "+old, "System update updated: "+u.Title)
	return u, nil
}

// Delete hides the release note from every listing.
func (s *systemUpdateService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	s.audit(ctx, domain.AuditSystemUpdateDelete, u, actor, "", "System update deleted: "+u.Title)
	return nil
}

func (s *systemUpdateService) audit(ctx context.Context, action domain.AuditAction, u *domain.SystemUpdate, actor Actor, oldValue, newValue string) {
	id := u.ID
	recordAudit(ctx, s.auditRepo, "systemUpdateService", actor, &domain.AuditLog{
		Action:     action,
		EntityType: domain.AuditEntitySystemUpdate,
		EntityID:   &id,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

func applySystemUpdateInput(u *domain.SystemUpdate, in SystemUpdateInput) error {
	t := domain.UpdateType(strings.ToUpper(string(in.Type)))
	if !domain.ValidUpdateTypes[t] {
		return domain.ErrInvalidUpdateType
	}
	date, err := time.Parse(updateDateLayout, in.UpdateDate)
	if err != nil {
		return domain.ErrInvalidUpdateDate
	}
	u.Title = strings.TrimSpace(in.Title)
	u.Description = in.Description
	u.UpdateDate = date
	u.Type = t
	u.Version = strings.TrimSpace(in.Version)
	return nil
}
