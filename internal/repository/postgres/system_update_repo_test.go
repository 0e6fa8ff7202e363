package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regnify/internal/domain"
)

func TestSystemUpdateRepo_ListByDateRange(t *testing.T) {
	db, mock := newMockDB(t)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "title", "description", "update_date", "type", "version",
		"is_active", "created_by", "created_at"}).
		AddRow(uuid.New().String(), "Austrian format rules", "", from, "FEATURE", "1.4.0", true, "root", from)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active AND update_date BETWEEN $1 AND $2 ORDER BY update_date DESC")).
		WithArgs(from, to).
		WillReturnRows(rows)

	got, err := NewSystemUpdateRepo(db).ListByDateRange(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.UpdateFeature, got[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSystemUpdateRepo_Update_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE system_updates SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewSystemUpdateRepo(db).Update(context.Background(), &domain.SystemUpdate{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrSystemUpdateNotFound)
}
