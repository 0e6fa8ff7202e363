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

const integrationColumns = `id, service_provider_name, send_endpoint_url, fetch_endpoint_url,
	auth_type, username, password, api_key, client_key, client_secret_hash,
	access_token, refresh_token, token_expiry, enable_daily_sending, sending_time,
	frequency, last_sync_at, sync_status, sync_errors, is_active,
	created_by, updated_by, created_at, updated_at`

const providerConstraint = "integration_configs_provider_key"

type integrationRepo struct {
	db *sqlx.DB
}

// NewIntegrationRepo creates a new PostgreSQL-backed IntegrationRepository.
func NewIntegrationRepo(db *sqlx.DB) port.IntegrationRepository {
	return &integrationRepo{db: db}
}

func (r *integrationRepo) Create(ctx context.Context, cfg *domain.IntegrationConfig) error {
	cfg.ID = uuid.New()
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO integration_configs (`+integrationColumns+`)
		VALUES (:id, :service_provider_name, :send_endpoint_url, :fetch_endpoint_url,
			:auth_type, :username, :password, :api_key, :client_key, :client_secret_hash,
			:access_token, :refresh_token, :token_expiry, :enable_daily_sending, :sending_time,
			:frequency, :last_sync_at, :sync_status, :sync_errors, :is_active,
			:created_by, :updated_by, :created_at, :updated_at)`, cfg)
	if isUniqueViolation(err, providerConstraint) {
		return domain.ErrDuplicateProvider
	}
	if err != nil {
		return fmt.Errorf("integrationRepo.Create: %w", err)
	}
	return nil
}

func (r *integrationRepo) getOne(ctx context.Context, op, where string, arg interface{}) (*domain.IntegrationConfig, error) {
	var cfg domain.IntegrationConfig
	err := r.db.GetContext(ctx, &cfg, "SELECT "+integrationColumns+" FROM integration_configs WHERE "+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIntegrationNotFound
		}
		return nil, fmt.Errorf("integrationRepo.%s: %w", op, err)
	}
	return &cfg, nil
}

func (r *integrationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.IntegrationConfig, error) {
	return r.getOne(ctx, "GetByID", "id = $1", id)
}

func (r *integrationRepo) GetByProvider(ctx context.Context, name string) (*domain.IntegrationConfig, error) {
	return r.getOne(ctx, "GetByProvider", "service_provider_name = $1", name)
}

func (r *integrationRepo) List(ctx context.Context) ([]domain.IntegrationConfig, error) {
	cfgs := []domain.IntegrationConfig{}
	err := r.db.SelectContext(ctx, &cfgs,
		"SELECT "+integrationColumns+" FROM integration_configs ORDER BY service_provider_name")
	if err != nil {
		return nil, fmt.Errorf("integrationRepo.List: %w", err)
	}
	return cfgs, nil
}

// ListScheduled returns active configs with daily sending switched on.
func (r *integrationRepo) ListScheduled(ctx context.Context) ([]domain.IntegrationConfig, error) {
	cfgs := []domain.IntegrationConfig{}
	err := r.db.SelectContext(ctx, &cfgs,
		"SELECT "+integrationColumns+` FROM integration_configs
		 WHERE is_active AND enable_daily_sending AND frequency <> $1
		 ORDER BY service_provider_name`, domain.FrequencyManual)
	if err != nil {
		return nil, fmt.Errorf("integrationRepo.ListScheduled: %w", err)
	}
	return cfgs, nil
}

func (r *integrationRepo) Update(ctx context.Context, cfg *domain.IntegrationConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `UPDATE integration_configs SET
			service_provider_name = :service_provider_name, send_endpoint_url = :send_endpoint_url,
			fetch_endpoint_url = :fetch_endpoint_url, auth_type = :auth_type,
			username = :username, password = :password, api_key = :api_key,
			client_key = :client_key, client_secret_hash = :client_secret_hash,
			access_token = :access_token, refresh_token = :refresh_token, token_expiry = :token_expiry,
			enable_daily_sending = :enable_daily_sending, sending_time = :sending_time,
			frequency = :frequency, is_active = :is_active,
			updated_by = :updated_by, updated_at = :updated_at
		 WHERE id = :id`, cfg)
	if isUniqueViolation(err, providerConstraint) {
		return domain.ErrDuplicateProvider
	}
	if err != nil {
		return fmt.Errorf("integrationRepo.Update: %w", err)
	}
	return expectOneRow(result, "integrationRepo.Update", domain.ErrIntegrationNotFound)
}

// RecordSync stores the outcome of a provider exchange. last_sync_at only
// moves forward on successful exchanges.
func (r *integrationRepo) RecordSync(ctx context.Context, id uuid.UUID, res domain.SyncResult) error {
	var lastSync *time.Time
	if res.Errors == "" {
		at := res.At.UTC()
		lastSync = &at
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE integration_configs
		 SET sync_status = $1, sync_errors = $2, last_sync_at = COALESCE($3::timestamptz, last_sync_at), updated_at = $4
		 WHERE id = $5`,
		res.Status, res.Errors, lastSync, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("integrationRepo.RecordSync: %w", err)
	}
	return expectOneRow(result, "integrationRepo.RecordSync", domain.ErrIntegrationNotFound)
}

func expectOneRow(result sql.Result, op string, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
