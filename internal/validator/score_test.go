package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"regnify/internal/validator"
	"regnify/internal/validator/invoice"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		violations []invoice.Violation
		want       int
	}{
		{"none", nil, 100},
		{"future_date", []invoice.Violation{{Category: invoice.CategoryFutureDocumentDate}}, 80},
		{"both_dates", []invoice.Violation{
			{Category: invoice.CategoryFutureDocumentDate},
			{Category: invoice.CategoryProcessingBeforeDocument},
		}, 60},
		{"both_parties", []invoice.Violation{
			{Category: invoice.CategoryMissingSender},
			{Category: invoice.CategoryMissingReceiver},
		}, 70},
		{"format_default_penalty", []invoice.Violation{{Category: invoice.CategoryJurisdictionFormat}}, 90},
		{"format_custom_penalty", []invoice.Violation{{Category: invoice.CategoryJurisdictionFormat, Penalty: 35}}, 65},
		{"universal_penalty_ignores_field", []invoice.Violation{{Category: invoice.CategoryMissingSender, Penalty: 99}}, 85},
		{"message_text_irrelevant", []invoice.Violation{{Category: invoice.CategoryMissingSender, Message: "Receiver is required"}}, 85},
		{"clamped_at_zero", []invoice.Violation{
			{Category: invoice.CategoryFutureDocumentDate},
			{Category: invoice.CategoryProcessingBeforeDocument},
			{Category: invoice.CategoryMissingSender},
			{Category: invoice.CategoryMissingReceiver},
			{Category: invoice.CategoryJurisdictionFormat, Penalty: 40},
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.Score(tt.violations))
		})
	}
}

func TestOutcome_Immutable(t *testing.T) {
	violations := []invoice.Violation{{Category: invoice.CategoryMissingSender, Message: "Sender is required"}}
	outcome := validator.NewOutcome(violations)

	violations[0].Message = "changed"
	got := outcome.Violations()
	got[0].Message = "changed again"

	assert.Equal(t, "Sender is required", outcome.Errors())
	assert.Equal(t, 85, outcome.Score())
}
