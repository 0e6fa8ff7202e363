package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"regnify/internal/domain"
)

// InvoiceRepository defines the contract for invoice persistence.
// Create reports a taken invoice number as domain.ErrDuplicateInvoiceNumber.
// Update, SoftDelete and UpdateProviderResponse only write live invoices and
// report a row deleted in the meantime as domain.ErrInvoiceDeleted.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ExistsByNumber(ctx context.Context, invoiceNumber string) (bool, error)
	List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string, at time.Time) error
	UpdateProviderResponse(ctx context.Context, id uuid.UUID, resp domain.ProviderResponse) error
}

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Update(ctx context.Context, user *domain.User) error
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
	ListByStatus(ctx context.Context, status domain.UserStatus, limit int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error)
}

// IntegrationRepository defines the contract for integration config persistence.
// Create and Update report a taken provider name as domain.ErrDuplicateProvider.
type IntegrationRepository interface {
	Create(ctx context.Context, cfg *domain.IntegrationConfig) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.IntegrationConfig, error)
	GetByProvider(ctx context.Context, name string) (*domain.IntegrationConfig, error)
	List(ctx context.Context) ([]domain.IntegrationConfig, error)
	ListScheduled(ctx context.Context) ([]domain.IntegrationConfig, error)
	Update(ctx context.Context, cfg *domain.IntegrationConfig) error
	RecordSync(ctx context.Context, id uuid.UUID, result domain.SyncResult) error
}

// SystemUpdateRepository defines the contract for release note persistence.
// Listings only return active entries, newest update date first.
type SystemUpdateRepository interface {
	Create(ctx context.Context, u *domain.SystemUpdate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SystemUpdate, error)
	ListActive(ctx context.Context) ([]domain.SystemUpdate, error)
	ListByType(ctx context.Context, t domain.UpdateType) ([]domain.SystemUpdate, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.SystemUpdate, error)
	ListByVersion(ctx context.Context, version string) ([]domain.SystemUpdate, error)
	Update(ctx context.Context, u *domain.SystemUpdate) error
}
