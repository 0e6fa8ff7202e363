package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regnify/internal/domain"
	"regnify/internal/port"
)

const invoiceNumberConstraint = "invoices_invoice_number_key"

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	query := `INSERT INTO invoices (
		id, invoice_number, doc_date, pro_date, sender, receiver,
		jurisdiction, document_type, status, business_status, provider_response,
		file_name, file_size, file_content_type, file_bucket, file_key,
		validation_errors, validation_score, uploaded_by,
		processed_by, processed_at, deleted, deleted_at, deleted_by,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16,
		$17, $18, $19,
		$20, $21, $22, $23, $24,
		$25, $26
	)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.DocumentDate, inv.ProcessingDate, inv.Sender, inv.Receiver,
		inv.Jurisdiction, inv.DocumentType, inv.Status, inv.BusinessStatus, inv.ProviderResponse,
		inv.FileName, inv.FileSize, inv.FileContentType, inv.FileBucket, inv.FileKey,
		inv.ValidationErrors, inv.ValidationScore, inv.UploadedBy,
		inv.ProcessedBy, inv.ProcessedAt, inv.Deleted, inv.DeletedAt, inv.DeletedBy,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, invoiceNumberConstraint) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

// ExistsByNumber also counts soft-deleted invoices; their numbers stay taken.
func (r *invoiceRepo) ExistsByNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM invoices WHERE invoice_number = $1)", invoiceNumber)
	if err != nil {
		return false, fmt.Errorf("invoiceRepo.ExistsByNumber: %w", err)
	}
	return exists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in the column.
// Backslash is PostgreSQL's default LIKE escape character.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// buildInvoiceWhere constructs the WHERE clause for listing non-deleted invoices.
func buildInvoiceWhere(filter domain.InvoiceFilter) (clause string, args []interface{}) {
	clause = "WHERE deleted = FALSE"
	argN := 1

	add := func(cond string, arg interface{}) {
		clause += fmt.Sprintf(" AND "+cond, argN)
		args = append(args, arg)
		argN++
	}

	if filter.StartDate != nil {
		add("doc_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("doc_date <= $%d", *filter.EndDate)
	}
	if filter.InvoiceNumber != "" {
		add("invoice_number ILIKE $%d", containsPattern(filter.InvoiceNumber))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Jurisdiction != "" {
		add("jurisdiction = $%d", filter.Jurisdiction)
	}
	if filter.DocumentType != "" {
		add("document_type = $%d", filter.DocumentType)
	}
	if filter.Sender != "" {
		add("sender ILIKE $%d", containsPattern(filter.Sender))
	}
	if filter.Receiver != "" {
		add("receiver ILIKE $%d", containsPattern(filter.Receiver))
	}
	if filter.UploadedBy != "" {
		add("uploaded_by = $%d", filter.UploadedBy)
	}
	if filter.ProviderResponse != "" {
		add("provider_response = $%d", filter.ProviderResponse)
	}
	return clause, args
}

func (r *invoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	where, args := buildInvoiceWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT * FROM invoices %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", where, n+1, n+2)
	args = append(args, limit, offset)

	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Search(ctx context.Context, query string, limit int) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	pattern := containsPattern(query)
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices
		 WHERE deleted = FALSE
		   AND (invoice_number ILIKE $1 OR sender ILIKE $1 OR receiver ILIKE $1)
		 ORDER BY created_at DESC LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.Search: %w", err)
	}
	return invoices, nil
}

// Update writes every mutable column of a live invoice. The invoice number is
// never changed, and a row soft-deleted since it was read is left untouched.
func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			doc_date = $1, pro_date = $2, sender = $3, receiver = $4,
			jurisdiction = $5, document_type = $6,
			status = $7, business_status = $8, provider_response = $9,
			validation_errors = $10, validation_score = $11,
			processed_by = $12, processed_at = $13,
			updated_at = $14
		 WHERE id = $15 AND deleted = FALSE`,
		inv.DocumentDate, inv.ProcessingDate, inv.Sender, inv.Receiver,
		inv.Jurisdiction, inv.DocumentType,
		inv.Status, inv.BusinessStatus, inv.ProviderResponse,
		inv.ValidationErrors, inv.ValidationScore,
		inv.ProcessedBy, inv.ProcessedAt,
		inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	return r.checkWritten(ctx, "Update", result, inv.ID)
}

// SoftDelete marks a live invoice deleted. Deleting twice reports ErrInvoiceDeleted.
func (r *invoiceRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET deleted = TRUE, deleted_at = $2, deleted_by = $3, updated_at = $2
		 WHERE id = $1 AND deleted = FALSE`,
		id, at, deletedBy)
	if err != nil {
		return fmt.Errorf("invoiceRepo.SoftDelete: %w", err)
	}
	return r.checkWritten(ctx, "SoftDelete", result, id)
}

// UpdateProviderResponse records the provider outcome of a live invoice.
func (r *invoiceRepo) UpdateProviderResponse(ctx context.Context, id uuid.UUID, resp domain.ProviderResponse) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET provider_response = $2, updated_at = NOW()
		 WHERE id = $1 AND deleted = FALSE`,
		id, resp)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateProviderResponse: %w", err)
	}
	return r.checkWritten(ctx, "UpdateProviderResponse", result, id)
}

// checkWritten tells a missing invoice from one soft-deleted under a guarded write.
func (r *invoiceRepo) checkWritten(ctx context.Context, op string, result sql.Result, id uuid.UUID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("invoiceRepo.%s rows affected: %w", op, err)
	}
	if rows > 0 {
		return nil
	}

	var deleted bool
	err = r.db.GetContext(ctx, &deleted, "SELECT deleted FROM invoices WHERE id = $1", id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrInvoiceNotFound
	case err != nil:
		return fmt.Errorf("invoiceRepo.%s: %w", op, err)
	case deleted:
		return domain.ErrInvoiceDeleted
	}
	return fmt.Errorf("invoiceRepo.%s: invoice %s was not written", op, id)
}
