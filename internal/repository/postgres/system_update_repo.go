package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regnify/internal/domain"
	"regnify/internal/port"
)

const systemUpdateColumns = `id, title, description, update_date, type, version,
	is_active, created_by, created_at`

const activeUpdatesOrder = " ORDER BY update_date DESC, created_at DESC"

type systemUpdateRepo struct {
	db *sqlx.DB
}

// NewSystemUpdateRepo creates a new PostgreSQL-backed SystemUpdateRepository.
func NewSystemUpdateRepo(db *sqlx.DB) port.SystemUpdateRepository {
	return &systemUpdateRepo{db: db}
}

func (r *systemUpdateRepo) Create(ctx context.Context, u *domain.SystemUpdate) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO system_updates (`+systemUpdateColumns+`)
		VALUES (:id, :title, :description, :update_date, :type, :version,
			:is_active, :created_by, :created_at)`, u)
	if err != nil {
		return fmt.Errorf("systemUpdateRepo.Create: %w", err)
	}
	return nil
}

func (r *systemUpdateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SystemUpdate, error) {
	var u domain.SystemUpdate
	err := r.db.GetContext(ctx, &u, "SELECT "+systemUpdateColumns+" FROM system_updates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSystemUpdateNotFound
		}
		return nil, fmt.Errorf("systemUpdateRepo.GetByID: %w", err)
	}
	return &u, nil
}

func (r *systemUpdateRepo) listActive(ctx context.Context, op, where string, args ...interface{}) ([]domain.SystemUpdate, error) {
	query := "SELECT " + systemUpdateColumns + " FROM system_updates WHERE is_active"
	if where != "" {
		query += " AND " + where
	}
	updates := []domain.SystemUpdate{}
	if err := r.db.SelectContext(ctx, &updates, query+activeUpdatesOrder, args...); err != nil {
		return nil, fmt.Errorf("systemUpdateRepo.%s: %w", op, err)
	}
	return updates, nil
}

func (r *systemUpdateRepo) ListActive(ctx context.Context) ([]domain.SystemUpdate, error) {
	return r.listActive(ctx, "ListActive", "")
}

func (r *systemUpdateRepo) ListByType(ctx context.Context, t domain.UpdateType) ([]domain.SystemUpdate, error) {
	return r.listActive(ctx, "ListByType", "type = $1", t)
}

// ListByDateRange includes both ends of the range.
func (r *systemUpdateRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.SystemUpdate, error) {
	return r.listActive(ctx, "ListByDateRange", "update_date BETWEEN $1 AND $2", from, to)
}

func (r *systemUpdateRepo) ListByVersion(ctx context.Context, version string) ([]domain.SystemUpdate, error) {
	return r.listActive(ctx, "ListByVersion", "version = $1", version)
}

func (r *systemUpdateRepo) Update(ctx context.Context, u *domain.SystemUpdate) error {
	result, err := r.db.NamedExecContext(ctx, `UPDATE system_updates SET
			title = :title, description = :description, update_date = :update_date,
			type = :type, version = :version, is_active = :is_active
		 WHERE id = :id`, u)
	if err != nil {
		return fmt.Errorf("systemUpdateRepo.Update: %w", err)
	}
	return expectOneRow(result, "systemUpdateRepo.Update", domain.ErrSystemUpdateNotFound)
}
