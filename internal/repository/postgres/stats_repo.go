package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"regnify/internal/domain"
	"regnify/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const dailyCountsQuery = `SELECT
	to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
	COUNT(*) AS count,
	COUNT(CASE WHEN status = 'COMPLETE' THEN 1 END) AS success_count,
	COUNT(CASE WHEN status = 'ERROR' THEN 1 END) AS error_count
FROM invoices
WHERE deleted = FALSE AND created_at >= $1
GROUP BY 1
ORDER BY 1`

// groupColumns whitelists the columns counts may be grouped by.
var groupColumns = map[string]string{
	"status":            "status",
	"jurisdiction":      "COALESCE(jurisdiction, 'UNSET')",
	"document_type":     "document_type",
	"provider_response": "provider_response",
}

func (r *statsRepo) countBy(ctx context.Context, column string) ([]domain.CountEntry, error) {
	expr, ok := groupColumns[column]
	if !ok {
		return nil, fmt.Errorf("statsRepo.countBy: unsupported column %q", column)
	}
	var entries []domain.CountEntry
	query := fmt.Sprintf(
		"SELECT %s AS key, COUNT(*) AS count FROM invoices WHERE deleted = FALSE GROUP BY 1 ORDER BY 2 DESC, 1",
		expr)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("statsRepo.countBy %s: %w", column, err)
	}
	return entries, nil
}

func (r *statsRepo) GetInvoiceCounts(ctx context.Context, since time.Time) (*port.InvoiceCounts, error) {
	counts := &port.InvoiceCounts{}
	if err := r.db.GetContext(ctx, &counts.Total,
		"SELECT COUNT(*) FROM invoices WHERE deleted = FALSE"); err != nil {
		return nil, fmt.Errorf("statsRepo.GetInvoiceCounts total: %w", err)
	}

	var err error
	if counts.ByStatus, err = r.countBy(ctx, "status"); err != nil {
		return nil, err
	}
	if counts.ByJurisdiction, err = r.countBy(ctx, "jurisdiction"); err != nil {
		return nil, err
	}
	if counts.ByDocumentType, err = r.countBy(ctx, "document_type"); err != nil {
		return nil, err
	}
	if counts.ByProviderStatus, err = r.countBy(ctx, "provider_response"); err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &counts.Daily, dailyCountsQuery, since); err != nil {
		return nil, fmt.Errorf("statsRepo.GetInvoiceCounts daily: %w", err)
	}
	return counts, nil
}

const quickCountsQuery = `SELECT
	COUNT(*) AS total,
	COUNT(CASE WHEN status = 'PENDING' THEN 1 END) AS pending,
	COUNT(CASE WHEN status = 'ERROR' THEN 1 END) AS errors,
	COUNT(CASE WHEN processed_at >= $1 THEN 1 END) AS processed_today,
	COALESCE(SUM(file_size), 0) AS storage_bytes
FROM invoices
WHERE deleted = FALSE`

func (r *statsRepo) GetQuickCounts(ctx context.Context, dayStart time.Time) (*domain.InvoiceQuickCounts, error) {
	var counts domain.InvoiceQuickCounts
	if err := r.db.GetContext(ctx, &counts, quickCountsQuery, dayStart); err != nil {
		return nil, fmt.Errorf("statsRepo.GetQuickCounts: %w", err)
	}
	return &counts, nil
}
