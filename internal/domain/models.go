package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the persisted invoice record. Validation fields are computed by the
// validation engine and lifecycle state machine; persistence is owned by the store.
type Invoice struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	InvoiceNumber    string           `db:"invoice_number" json:"invoice_number"`
	DocumentDate     time.Time        `db:"doc_date" json:"doc_date"`
	ProcessingDate   time.Time        `db:"pro_date" json:"pro_date"`
	Sender           string           `db:"sender" json:"sender"`
	Receiver         string           `db:"receiver" json:"receiver"`
	Jurisdiction     *Jurisdiction    `db:"jurisdiction" json:"jurisdiction"`
	DocumentType     DocumentType     `db:"document_type" json:"document_type"`
	Status           ProcessingStatus `db:"status" json:"status"`
	BusinessStatus   BusinessStatus   `db:"business_status" json:"business_status"`
	ProviderResponse ProviderResponse `db:"provider_response" json:"provider_response"`
	FileName         *string          `db:"file_name" json:"file_name"`
	FileSize         *int64           `db:"file_size" json:"file_size"`
	FileContentType  *string          `db:"file_content_type" json:"file_content_type"`
	FileBucket       *string          `db:"file_bucket" json:"-"`
	FileKey          *string          `db:"file_key" json:"-"`
	ValidationErrors string           `db:"validation_errors" json:"validation_errors"`
	ValidationScore  int              `db:"validation_score" json:"validation_score"`
	UploadedBy       string           `db:"uploaded_by" json:"uploaded_by"`
	ProcessedBy      *string          `db:"processed_by" json:"processed_by"`
	ProcessedAt      *time.Time       `db:"processed_at" json:"processed_at"`
	Deleted          bool             `db:"deleted" json:"-"`
	DeletedAt        *time.Time       `db:"deleted_at" json:"-"`
	DeletedBy        *string          `db:"deleted_by" json:"-"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// HasFile reports whether a stored attachment is linked to the invoice.
func (i *Invoice) HasFile() bool {
	return i.FileBucket != nil && i.FileKey != nil
}

// InvoiceFilter narrows invoice listings. Zero-valued fields are ignored.
type InvoiceFilter struct {
	StartDate        *time.Time
	EndDate          *time.Time
	InvoiceNumber    string
	Status           ProcessingStatus
	Jurisdiction     Jurisdiction
	DocumentType     DocumentType
	Sender           string
	Receiver         string
	UploadedBy       string
	ProviderResponse ProviderResponse
}

// User is an account allowed to work with invoices.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	LastLogin    *time.Time `db:"last_login" json:"last_login"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AuditLog records who did what to which entity.
type AuditLog struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Action       AuditAction `db:"action" json:"action"`
	EntityType   string      `db:"entity_type" json:"entity_type"`
	EntityID     *uuid.UUID  `db:"entity_id" json:"entity_id"`
	PerformedBy  string      `db:"performed_by" json:"performed_by"`
	PerformedAt  time.Time   `db:"performed_at" json:"performed_at"`
	Status       string      `db:"status" json:"status"`
	OldValue     string      `db:"old_value" json:"old_value"`
	NewValue     string      `db:"new_value" json:"new_value"`
	ErrorMessage string      `db:"error_message" json:"error_message"`
	IPAddress    string      `db:"ip_address" json:"ip_address"`
	UserAgent    string      `db:"user_agent" json:"user_agent"`
}

// CountEntry is a labelled count used by dashboard aggregates.
type CountEntry struct {
	Key   string `db:"key" json:"key"`
	Count int64  `db:"count" json:"count"`
}

// DailyCount holds per-day upload counts split by outcome.
type DailyCount struct {
	Date         string `db:"day" json:"date"`
	Count        int64  `db:"count" json:"count"`
	SuccessCount int64  `db:"success_count" json:"success_count"`
	ErrorCount   int64  `db:"error_count" json:"error_count"`
}

// ShareEntry is a count with its percentage of the total.
type ShareEntry struct {
	Key        string  `json:"key"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DashboardStats aggregates invoice counts for reporting.
type DashboardStats struct {
	TotalDocuments    int64            `json:"total_documents"`
	TotalProcessed    int64            `json:"total_processed"`
	TotalPending      int64            `json:"total_pending"`
	TotalErrors       int64            `json:"total_errors"`
	SuccessRate       float64          `json:"success_rate"`
	ByJurisdiction    map[string]int64 `json:"documents_by_jurisdiction"`
	ByStatus          map[string]int64 `json:"documents_by_status"`
	ByDocumentType    map[string]int64 `json:"documents_by_type"`
	ByProviderStatus  map[string]int64 `json:"provider_response_status"`
	Daily             []DailyCount     `json:"daily_stats"`
	JurisdictionShare []ShareEntry     `json:"jurisdiction_stats"`
	DocumentTypeShare []ShareEntry     `json:"document_type_stats"`
}

// QuickStats is the compact dashboard summary.
type QuickStats struct {
	TotalInvoices   int64   `json:"total_invoices"`
	PendingInvoices int64   `json:"pending_invoices"`
	ProcessedToday  int64   `json:"processed_today"`
	ErrorRate       float64 `json:"error_rate"`
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
	StorageUsed     int64   `json:"storage_used_bytes"`
	Uptime          string  `json:"uptime"`
}

// InvoiceQuickCounts are the invoice figures behind QuickStats.
type InvoiceQuickCounts struct {
	Total          int64 `db:"total"`
	Pending        int64 `db:"pending"`
	Errors         int64 `db:"errors"`
	ProcessedToday int64 `db:"processed_today"`
	StorageBytes   int64 `db:"storage_bytes"`
}

// IntegrationConfig describes how invoices are exchanged with one external
// service provider. Credentials never leave the server in JSON.
type IntegrationConfig struct {
	ID                  uuid.UUID     `db:"id" json:"id"`
	ServiceProviderName string        `db:"service_provider_name" json:"service_provider_name"`
	SendEndpointURL     string        `db:"send_endpoint_url" json:"send_endpoint_url"`
	FetchEndpointURL    string        `db:"fetch_endpoint_url" json:"fetch_endpoint_url"`
	AuthType            AuthType      `db:"auth_type" json:"auth_type"`
	Username            string        `db:"username" json:"-"`
	Password            string        `db:"password" json:"-"`
	APIKey              string        `db:"api_key" json:"-"`
	ClientKey           string        `db:"client_key" json:"client_key,omitempty"`
	ClientSecretHash    string        `db:"client_secret_hash" json:"-"`
	AccessToken         string        `db:"access_token" json:"-"`
	RefreshToken        string        `db:"refresh_token" json:"-"`
	TokenExpiry         *time.Time    `db:"token_expiry" json:"token_expiry,omitempty"`
	EnableDailySending  bool          `db:"enable_daily_sending" json:"enable_daily_sending"`
	SendingTime         string        `db:"sending_time" json:"sending_time"`
	Frequency           SendFrequency `db:"frequency" json:"frequency"`
	LastSyncAt          *time.Time    `db:"last_sync_at" json:"last_sync_at,omitempty"`
	SyncStatus          string        `db:"sync_status" json:"sync_status"`
	SyncErrors          string        `db:"sync_errors" json:"sync_errors,omitempty"`
	IsActive            bool          `db:"is_active" json:"is_active"`
	CreatedBy           string        `db:"created_by" json:"created_by"`
	UpdatedBy           string        `db:"updated_by" json:"updated_by"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
}

// SyncResult is the outcome of one exchange with a service provider.
type SyncResult struct {
	Status string
	Errors string
	At     time.Time
}

// SystemUpdate is a release note shown to users.
type SystemUpdate struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	UpdateDate  time.Time  `db:"update_date" json:"update_date"`
	Type        UpdateType `db:"type" json:"type"`
	Version     string     `db:"version" json:"version"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
