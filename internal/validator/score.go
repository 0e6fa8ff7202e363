package validator

import "regnify/internal/validator/invoice"

// MaxScore is the score of a submission without violations.
const MaxScore = 100

// Score deducts each violation's penalty from MaxScore, never going below 0.
func Score(violations []invoice.Violation) int {
	score := MaxScore
	for _, v := range violations {
		score -= penalty(v)
	}
	if score < 0 {
		return 0
	}
	return score
}

func penalty(v invoice.Violation) int {
	switch v.Category {
	case invoice.CategoryJurisdictionFormat:
		// format rules may carry their own penalty
		if v.Penalty > 0 {
			return v.Penalty
		}
		return v.Category.Penalty()
	case invoice.CategoryFutureDocumentDate,
		invoice.CategoryProcessingBeforeDocument,
		invoice.CategoryMissingSender,
		invoice.CategoryMissingReceiver:
		return v.Category.Penalty()
	default:
		if v.Penalty > 0 {
			return v.Penalty
		}
		return 0
	}
}
