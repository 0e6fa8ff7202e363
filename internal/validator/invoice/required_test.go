package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regnify/internal/validator/invoice"
)

var today = time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)

func validSubmission() *invoice.Submission {
	return &invoice.Submission{
		InvoiceNumber:  "INV-001",
		DocumentDate:   today.AddDate(0, 0, -3),
		ProcessingDate: today.AddDate(0, 0, -1),
		Sender:         "Acme Supplies",
		Receiver:       "Globex",
	}
}

func findCheck(key string) interface {
	Validate(*invoice.Submission, time.Time) (invoice.Violation, bool)
} {
	for _, c := range invoice.UniversalChecks() {
		if c.RuleKey() == key {
			return c
		}
	}
	return nil
}

func TestUniversalChecks_Order(t *testing.T) {
	checks := invoice.UniversalChecks()
	require.Len(t, checks, 4)

	want := []invoice.Category{
		invoice.CategoryFutureDocumentDate,
		invoice.CategoryProcessingBeforeDocument,
		invoice.CategoryMissingSender,
		invoice.CategoryMissingReceiver,
	}
	for i, c := range checks {
		assert.Equal(t, want[i], c.Category())
		assert.NotEmpty(t, c.Message())
	}
}

func TestDocumentDateNotFuture(t *testing.T) {
	c := findCheck("date.document.not_future")
	require.NotNil(t, c)

	t.Run("pass_today_later_hour", func(t *testing.T) {
		sub := validSubmission()
		sub.DocumentDate = today.Add(9 * time.Hour)
		sub.ProcessingDate = sub.DocumentDate
		_, failed := c.Validate(sub, today)
		assert.False(t, failed)
	})

	t.Run("fail_tomorrow", func(t *testing.T) {
		sub := validSubmission()
		sub.DocumentDate = today.AddDate(0, 0, 1)
		v, failed := c.Validate(sub, today)
		require.True(t, failed)
		assert.Equal(t, "Document date cannot be in the future", v.Message)
		assert.Equal(t, 20, v.Penalty)
	})
}

func TestProcessingAfterDocument(t *testing.T) {
	c := findCheck("date.processing.after_document")
	require.NotNil(t, c)

	t.Run("pass_same_day", func(t *testing.T) {
		sub := validSubmission()
		sub.ProcessingDate = sub.DocumentDate.Add(-time.Hour)
		_, failed := c.Validate(sub, today)
		assert.False(t, failed)
	})

	t.Run("fail_day_before", func(t *testing.T) {
		sub := validSubmission()
		sub.ProcessingDate = sub.DocumentDate.AddDate(0, 0, -1)
		v, failed := c.Validate(sub, today)
		require.True(t, failed)
		assert.Equal(t, invoice.CategoryProcessingBeforeDocument, v.Category)
	})
}

func TestRequiredParties(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		mutate   func(*invoice.Submission)
		wantFail bool
	}{
		{"sender_present", "req.sender", func(*invoice.Submission) {}, false},
		{"sender_empty", "req.sender", func(s *invoice.Submission) { s.Sender = "" }, true},
		{"sender_blank", "req.sender", func(s *invoice.Submission) { s.Sender = " \t " }, true},
		{"receiver_present", "req.receiver", func(*invoice.Submission) {}, false},
		{"receiver_blank", "req.receiver", func(s *invoice.Submission) { s.Receiver = "   " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := findCheck(tt.key)
			require.NotNil(t, c)
			sub := validSubmission()
			tt.mutate(sub)
			v, failed := c.Validate(sub, today)
			assert.Equal(t, tt.wantFail, failed)
			if tt.wantFail {
				assert.Equal(t, 15, v.Penalty)
			}
		})
	}
}

func TestDay_TruncatesToUTC(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2025, 6, 16, 1, 0, 0, 0, berlin)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), invoice.Day(ts))
}
