package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"regnify/internal/domain"
	"regnify/internal/port"
	"regnify/internal/validator/invoice"
)

// dashboardDays is the length of the daily series, today included.
const dashboardDays = 7

// DashboardService provides aggregate invoice statistics.
type DashboardService interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
	GetQuickStats(ctx context.Context) (*domain.QuickStats, error)
}

type dashboardService struct {
	statsRepo port.StatsRepository
	userRepo  port.UserRepository
	now       func() time.Time
	started   time.Time
}

// NewDashboardService creates a new DashboardService implementation. Uptime is
// measured from construction.
func NewDashboardService(statsRepo port.StatsRepository, userRepo port.UserRepository) DashboardService {
	return &dashboardService{statsRepo: statsRepo, userRepo: userRepo, now: time.Now, started: time.Now()}
}

func (s *dashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	today := invoice.Day(s.now())
	since := today.AddDate(0, 0, -(dashboardDays - 1))

	counts, err := s.statsRepo.GetInvoiceCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("dashboard.GetStats: %w", err)
	}

	byStatus := toMap(counts.ByStatus)
	stats := &domain.DashboardStats{
		TotalDocuments:    counts.Total,
		TotalProcessed:    byStatus[string(domain.ProcessingComplete)],
		TotalPending:      byStatus[string(domain.ProcessingPending)],
		TotalErrors:       byStatus[string(domain.ProcessingError)],
		ByStatus:          byStatus,
		ByJurisdiction:    toMap(counts.ByJurisdiction),
		ByDocumentType:    toMap(counts.ByDocumentType),
		ByProviderStatus:  toMap(counts.ByProviderStatus),
		Daily:             fillDays(counts.Daily, since, dashboardDays),
		JurisdictionShare: shares(counts.ByJurisdiction, counts.Total),
		DocumentTypeShare: shares(counts.ByDocumentType, counts.Total),
	}
	if counts.Total > 0 {
		stats.SuccessRate = round2(float64(stats.TotalProcessed) / float64(counts.Total) * 100)
	}
	return stats, nil
}

func (s *dashboardService) GetQuickStats(ctx context.Context) (*domain.QuickStats, error) {
	now := s.now()
	counts, err := s.statsRepo.GetQuickCounts(ctx, invoice.Day(now))
	if err != nil {
		return nil, fmt.Errorf("dashboard.GetQuickStats: %w", err)
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard.GetQuickStats: %w", err)
	}
	active, err := s.userRepo.CountByStatus(ctx, domain.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("dashboard.GetQuickStats: %w", err)
	}

	stats := &domain.QuickStats{
		TotalInvoices:   counts.Total,
		PendingInvoices: counts.Pending,
		ProcessedToday:  counts.ProcessedToday,
		TotalUsers:      users,
		ActiveUsers:     active,
		StorageUsed:     counts.StorageBytes,
		Uptime:          now.Sub(s.started).Truncate(time.Second).String(),
	}
	if counts.Total > 0 {
		stats.ErrorRate = round2(float64(counts.Errors) / float64(counts.Total) * 100)
	}
	return stats, nil
}

func toMap(entries []domain.CountEntry) map[string]int64 {
	m := make(map[string]int64, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Count
	}
	return m
}

func shares(entries []domain.CountEntry, total int64) []domain.ShareEntry {
	out := make([]domain.ShareEntry, 0, len(entries))
	for _, e := range entries {
		var pct float64
		if total > 0 {
			pct = round2(float64(e.Count) / float64(total) * 100)
		}
		out = append(out, domain.ShareEntry{Key: e.Key, Count: e.Count, Percentage: pct})
	}
	return out
}

// fillDays returns one entry per day from since, with zero counts for days without uploads.
func fillDays(daily []domain.DailyCount, since time.Time, days int) []domain.DailyCount {
	byDay := make(map[string]domain.DailyCount, len(daily))
	for _, d := range daily {
		byDay[d.Date] = d
	}
	out := make([]domain.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		key := since.AddDate(0, 0, i).Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = domain.DailyCount{Date: key}
		}
		out = append(out, d)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
