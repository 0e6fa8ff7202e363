package validator

import (
	"time"

	"regnify/internal/validator/invoice"
)

// Validator is a single rule evaluated against a submission.
type Validator interface {
	Validate(sub *invoice.Submission, today time.Time) (invoice.Violation, bool)
	RuleKey() string
	Category() invoice.Category
	Message() string
}
