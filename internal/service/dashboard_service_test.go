package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"regnify/internal/domain"
	"regnify/internal/port"
	"regnify/internal/service"
	"regnify/mocks"
)

func TestDashboardService_GetStats(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewDashboardService(repo, new(mocks.MockUserRepo))
	today := time.Now().UTC().Format("2006-01-02")

	repo.On("GetInvoiceCounts", mock.Anything, mock.AnythingOfType("time.Time")).Return(&port.InvoiceCounts{
		Total: 3,
		ByStatus: []domain.CountEntry{
			{Key: "COMPLETE", Count: 2},
			{Key: "ERROR", Count: 1},
		},
		ByJurisdiction: []domain.CountEntry{
			{Key: "GERMANY", Count: 2},
			{Key: "UNSET", Count: 1},
		},
		ByDocumentType:   []domain.CountEntry{{Key: "INVOICE", Count: 3}},
		ByProviderStatus: []domain.CountEntry{{Key: "SUCCESS", Count: 2}, {Key: "FAILED", Count: 1}},
		Daily:            []domain.DailyCount{{Date: today, Count: 3, SuccessCount: 2, ErrorCount: 1}},
	}, nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalDocuments)
	assert.Equal(t, int64(2), stats.TotalProcessed)
	assert.Equal(t, int64(0), stats.TotalPending)
	assert.Equal(t, int64(1), stats.TotalErrors)
	assert.Equal(t, 66.67, stats.SuccessRate)
	assert.Equal(t, int64(2), stats.ByJurisdiction["GERMANY"])

	require.Len(t, stats.Daily, 7)
	assert.Equal(t, today, stats.Daily[6].Date)
	assert.Equal(t, int64(3), stats.Daily[6].Count)
	assert.Zero(t, stats.Daily[0].Count)

	require.Len(t, stats.JurisdictionShare, 2)
	assert.Equal(t, 66.67, stats.JurisdictionShare[0].Percentage)
	assert.Equal(t, 33.33, stats.JurisdictionShare[1].Percentage)
	assert.Equal(t, 100.0, stats.DocumentTypeShare[0].Percentage)
}

func TestDashboardService_Empty(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewDashboardService(repo, new(mocks.MockUserRepo))
	repo.On("GetInvoiceCounts", mock.Anything, mock.Anything).Return(&port.InvoiceCounts{}, nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.SuccessRate)
	assert.Len(t, stats.Daily, 7)
	assert.Empty(t, stats.JurisdictionShare)
}

func TestDashboardService_Error(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewDashboardService(repo, new(mocks.MockUserRepo))
	repo.On("GetInvoiceCounts", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.GetStats(context.Background())
	assert.Error(t, err)
}

func TestDashboardService_GetQuickStats(t *testing.T) {
	stats := new(mocks.MockStatsRepo)
	users := new(mocks.MockUserRepo)
	svc := service.NewDashboardService(stats, users)

	stats.On("GetQuickCounts", mock.Anything, mock.MatchedBy(func(day time.Time) bool {
		return day.Hour() == 0 && day.Minute() == 0
	})).Return(&domain.InvoiceQuickCounts{
		Total: 8, Pending: 3, Errors: 2, ProcessedToday: 4, StorageBytes: 2048,
	}, nil)
	users.On("Count", mock.Anything).Return(int64(5), nil)
	users.On("CountByStatus", mock.Anything, domain.UserStatusActive).Return(int64(4), nil)

	got, err := svc.GetQuickStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(8), got.TotalInvoices)
	assert.Equal(t, int64(3), got.PendingInvoices)
	assert.Equal(t, int64(4), got.ProcessedToday)
	assert.Equal(t, 25.0, got.ErrorRate)
	assert.Equal(t, int64(5), got.TotalUsers)
	assert.Equal(t, int64(4), got.ActiveUsers)
	assert.Equal(t, int64(2048), got.StorageUsed)
	assert.NotEmpty(t, got.Uptime)
}

func TestDashboardService_GetQuickStats_Errors(t *testing.T) {
	stats := new(mocks.MockStatsRepo)
	users := new(mocks.MockUserRepo)
	svc := service.NewDashboardService(stats, users)

	stats.On("GetQuickCounts", mock.Anything, mock.Anything).Return(&domain.InvoiceQuickCounts{}, nil)
	users.On("Count", mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := svc.GetQuickStats(context.Background())
	assert.ErrorContains(t, err, "db down")
}
