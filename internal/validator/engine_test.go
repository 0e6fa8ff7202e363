package validator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regnify/internal/domain"
	"regnify/internal/validator"
	"regnify/internal/validator/invoice"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func setupEngine(t *testing.T) *validator.Engine {
	t.Helper()
	registry, err := validator.NewRegistry()
	require.NoError(t, err)
	return validator.NewEngine(registry, validator.WithClock(func() time.Time { return now }))
}

func validSubmission() *invoice.Submission {
	return &invoice.Submission{
		InvoiceNumber:  "INV-001",
		DocumentDate:   now.AddDate(0, 0, -2),
		ProcessingDate: now,
		Sender:         "Acme Supplies",
		Receiver:       "Globex",
		DocumentType:   domain.DocumentTypeInvoice,
	}
}

func TestEngine_ValidWithoutJurisdiction(t *testing.T) {
	engine := setupEngine(t)

	outcome, err := engine.Evaluate(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.True(t, outcome.Passed())
	assert.Equal(t, 100, outcome.Score())
	assert.Empty(t, outcome.Violations())
	assert.Equal(t, "", outcome.Errors())
}

func TestEngine_GermanSenderWithoutLegalForm(t *testing.T) {
	engine := setupEngine(t)
	sub := validSubmission()
	sub.Jurisdiction = domain.JurisdictionGermany
	sub.Sender = "Acme Corp"
	sub.InvoiceNumber = "1234567890"

	outcome, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.False(t, outcome.Passed())
	assert.Equal(t, []string{"German companies must end with GmbH, AG or KG"}, outcome.Messages())
	assert.Equal(t, 90, outcome.Score())
}

func TestEngine_GermanPenaltiesCompound(t *testing.T) {
	engine := setupEngine(t)
	sub := validSubmission()
	sub.Jurisdiction = domain.JurisdictionGermany
	sub.Sender = "Acme Corp"
	sub.InvoiceNumber = "DE-1"

	outcome, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Len(t, outcome.Violations(), 2)
	assert.Equal(t, 80, outcome.Score())
}

func TestEngine_France(t *testing.T) {
	engine := setupEngine(t)

	t.Run("valid_number", func(t *testing.T) {
		sub := validSubmission()
		sub.Jurisdiction = domain.JurisdictionFrance
		sub.InvoiceNumber = "FR12345"
		outcome, err := engine.Evaluate(context.Background(), sub)
		require.NoError(t, err)
		assert.True(t, outcome.Passed())
		assert.Equal(t, 100, outcome.Score())
	})

	t.Run("invalid_number", func(t *testing.T) {
		sub := validSubmission()
		sub.Jurisdiction = domain.JurisdictionFrance
		sub.InvoiceNumber = "INV123"
		outcome, err := engine.Evaluate(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, "French invoices must start with 'FR' followed by numbers", outcome.Errors())
		assert.Equal(t, 90, outcome.Score())
	})
}

func TestEngine_DateViolationsInOrder(t *testing.T) {
	engine := setupEngine(t)
	sub := validSubmission()
	sub.DocumentDate = now.AddDate(0, 0, 1)
	sub.ProcessingDate = now

	outcome, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t,
		"Document date cannot be in the future; Processing date cannot be before document date",
		outcome.Errors())
	assert.Equal(t, 60, outcome.Score())
}

func TestEngine_UniversalBeforeJurisdiction(t *testing.T) {
	engine := setupEngine(t)
	sub := validSubmission()
	sub.Jurisdiction = domain.JurisdictionUK
	sub.Receiver = ""

	outcome, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Receiver is required",
		"UK invoices must start with 'UK' followed by 8 digits",
	}, outcome.Messages())
	assert.Equal(t, 75, outcome.Score())
}

func TestEngine_AllUniversalAndGermanFailures(t *testing.T) {
	engine := setupEngine(t)
	sub := &invoice.Submission{
		InvoiceNumber:  "X",
		DocumentDate:   now.AddDate(0, 0, 5),
		ProcessingDate: now,
		Jurisdiction:   domain.JurisdictionGermany,
	}

	outcome, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Len(t, outcome.Violations(), 6)
	assert.Equal(t, 10, outcome.Score())
	assert.NotContains(t, outcome.Errors(), "; ;")
	assert.NotRegexp(t, `;\s*$`, outcome.Errors())
}

func TestEngine_JurisdictionWithoutRules(t *testing.T) {
	engine := setupEngine(t)

	for _, j := range []domain.Jurisdiction{
		domain.JurisdictionNetherlands,
		domain.JurisdictionBelgium,
		domain.JurisdictionSwitzerland,
		domain.JurisdictionAustria,
		domain.JurisdictionOther,
		domain.Jurisdiction("MARS"),
	} {
		t.Run(string(j), func(t *testing.T) {
			sub := validSubmission()
			sub.Jurisdiction = j
			outcome, err := engine.Evaluate(context.Background(), sub)
			require.NoError(t, err)
			assert.True(t, outcome.Passed())
		})
	}
}

func TestEngine_MissingDate(t *testing.T) {
	engine := setupEngine(t)

	t.Run("document_date", func(t *testing.T) {
		sub := validSubmission()
		sub.DocumentDate = time.Time{}
		_, err := engine.Evaluate(context.Background(), sub)
		assert.ErrorIs(t, err, domain.ErrMissingDate)
	})

	t.Run("processing_date", func(t *testing.T) {
		sub := validSubmission()
		sub.ProcessingDate = time.Time{}
		_, err := engine.Evaluate(context.Background(), sub)
		assert.ErrorIs(t, err, domain.ErrMissingDate)
	})
}

func TestEngine_Idempotent(t *testing.T) {
	engine := setupEngine(t)
	sub := validSubmission()
	sub.Jurisdiction = domain.JurisdictionSpain
	sub.Sender = " "

	first, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	second, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	firstJSON, err := first.MarshalJSON()
	require.NoError(t, err)
	secondJSON, err := second.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestEngine_ConcurrentEvaluate(t *testing.T) {
	engine := setupEngine(t)

	var wg sync.WaitGroup
	scores := make([]int, 32)
	for i := range scores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := validSubmission()
			sub.Jurisdiction = domain.JurisdictionItaly
			outcome, err := engine.Evaluate(context.Background(), sub)
			if err == nil {
				scores[i] = outcome.Score()
			}
		}(i)
	}
	wg.Wait()

	for _, s := range scores {
		assert.Equal(t, 90, s)
	}
}

func TestEngine_ClockEvaluatedPerCall(t *testing.T) {
	registry, err := validator.NewRegistry()
	require.NoError(t, err)
	clock := now
	engine := validator.NewEngine(registry, validator.WithClock(func() time.Time { return clock }))

	sub := validSubmission()
	sub.DocumentDate = now.AddDate(0, 0, 1)
	sub.ProcessingDate = sub.DocumentDate

	outcome, err := engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.False(t, outcome.Passed())

	clock = now.AddDate(0, 0, 1)
	outcome, err = engine.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, outcome.Passed())
}
