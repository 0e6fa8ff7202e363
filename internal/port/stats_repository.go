package port

import (
	"context"
	"time"

	"regnify/internal/domain"
)

// InvoiceCounts holds the raw aggregates behind the dashboard.
type InvoiceCounts struct {
	Total            int64
	ByStatus         []domain.CountEntry
	ByJurisdiction   []domain.CountEntry
	ByDocumentType   []domain.CountEntry
	ByProviderStatus []domain.CountEntry
	Daily            []domain.DailyCount
}

// StatsRepository provides aggregate statistics queries over non-deleted invoices.
type StatsRepository interface {
	GetInvoiceCounts(ctx context.Context, since time.Time) (*InvoiceCounts, error)
	// GetQuickCounts counts invoices processed at or after dayStart as today's.
	GetQuickCounts(ctx context.Context, dayStart time.Time) (*domain.InvoiceQuickCounts, error)
}
