package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regnify/internal/domain"
	"regnify/internal/lifecycle"
	"regnify/internal/validator"
	"regnify/internal/validator/invoice"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func failingOutcome() validator.Outcome {
	return validator.NewOutcome([]invoice.Violation{
		{RuleKey: "req.sender", Category: invoice.CategoryMissingSender, Message: "Sender is required"},
		{RuleKey: "req.receiver", Category: invoice.CategoryMissingReceiver, Message: "Receiver is required"},
	})
}

func newInvoice() *domain.Invoice {
	inv := &domain.Invoice{InvoiceNumber: "INV-1"}
	lifecycle.Init(inv, now.Add(-time.Hour))
	return inv
}

func TestFromOutcome(t *testing.T) {
	assert.Equal(t, lifecycle.Accepted, lifecycle.FromOutcome(validator.NewOutcome(nil)))
	assert.Equal(t, lifecycle.Failed, lifecycle.FromOutcome(failingOutcome()))
}

func TestInit(t *testing.T) {
	inv := newInvoice()
	assert.Equal(t, lifecycle.Initial, lifecycle.Of(inv))
	assert.Equal(t, domain.ProcessingPending, inv.Status)
	assert.Equal(t, domain.BusinessPendingReview, inv.BusinessStatus)
	assert.Equal(t, domain.ProviderPending, inv.ProviderResponse)
}

func TestApplyValidation(t *testing.T) {
	t.Run("failing", func(t *testing.T) {
		inv := newInvoice()
		require.NoError(t, lifecycle.ApplyValidation(inv, failingOutcome(), now))
		assert.Equal(t, lifecycle.Failed, lifecycle.Of(inv))
		assert.Equal(t, "Sender is required; Receiver is required", inv.ValidationErrors)
		assert.Equal(t, 70, inv.ValidationScore)
		assert.Equal(t, now, inv.UpdatedAt)
	})

	t.Run("revalidation_overwrites", func(t *testing.T) {
		inv := newInvoice()
		require.NoError(t, lifecycle.ApplyValidation(inv, failingOutcome(), now))
		require.NoError(t, lifecycle.ApplyValidation(inv, validator.NewOutcome(nil), now))
		assert.Equal(t, lifecycle.Accepted, lifecycle.Of(inv))
		assert.Equal(t, "", inv.ValidationErrors)
		assert.Equal(t, 100, inv.ValidationScore)
	})

	t.Run("deleted", func(t *testing.T) {
		inv := newInvoice()
		require.NoError(t, lifecycle.ApplyValidation(inv, failingOutcome(), now))
		require.NoError(t, lifecycle.SoftDelete(inv, "admin", now))
		before := *inv

		err := lifecycle.ApplyValidation(inv, validator.NewOutcome(nil), now.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
		assert.Equal(t, before, *inv)
	})
}

func TestProcess(t *testing.T) {
	t.Run("overrides_failed_validation", func(t *testing.T) {
		inv := newInvoice()
		require.NoError(t, lifecycle.ApplyValidation(inv, failingOutcome(), now))

		require.NoError(t, lifecycle.Process(inv, "moderator", now))
		assert.Equal(t, lifecycle.Accepted, lifecycle.Of(inv))
		require.NotNil(t, inv.ProcessedBy)
		assert.Equal(t, "moderator", *inv.ProcessedBy)
		require.NotNil(t, inv.ProcessedAt)
		assert.Equal(t, now, *inv.ProcessedAt)
		// errors text and score stay as validated
		assert.Equal(t, 70, inv.ValidationScore)
		assert.NotEmpty(t, inv.ValidationErrors)
	})

	t.Run("deleted", func(t *testing.T) {
		inv := newInvoice()
		require.NoError(t, lifecycle.ApplyValidation(inv, failingOutcome(), now))
		require.NoError(t, lifecycle.SoftDelete(inv, "admin", now))

		err := lifecycle.Process(inv, "moderator", now)
		assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
		assert.Equal(t, lifecycle.Failed, lifecycle.Of(inv))
		assert.Nil(t, inv.ProcessedBy)
	})
}

func TestSoftDelete(t *testing.T) {
	inv := newInvoice()
	require.NoError(t, lifecycle.ApplyValidation(inv, failingOutcome(), now))

	require.NoError(t, lifecycle.SoftDelete(inv, "admin", now))
	assert.True(t, inv.Deleted)
	require.NotNil(t, inv.DeletedBy)
	assert.Equal(t, "admin", *inv.DeletedBy)
	assert.Equal(t, lifecycle.Failed, lifecycle.Of(inv))

	assert.ErrorIs(t, lifecycle.SoftDelete(inv, "admin", now), domain.ErrInvoiceDeleted)
}
