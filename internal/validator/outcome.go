package validator

import (
	"encoding/json"
	"strings"

	"regnify/internal/validator/invoice"
)

// ErrorSeparator joins violation messages in the persisted errors text.
const ErrorSeparator = "; "

// Outcome is the immutable result of one validation run.
type Outcome struct {
	violations []invoice.Violation
	score      int
}

// NewOutcome builds an Outcome from violations in evaluation order.
func NewOutcome(violations []invoice.Violation) Outcome {
	vs := make([]invoice.Violation, len(violations))
	copy(vs, violations)
	return Outcome{violations: vs, score: Score(vs)}
}

// Passed reports whether no rule was violated.
func (o Outcome) Passed() bool { return len(o.violations) == 0 }

// Score is in [0, MaxScore].
func (o Outcome) Score() int { return o.score }

// Violations returns a copy of the violations in evaluation order.
func (o Outcome) Violations() []invoice.Violation {
	vs := make([]invoice.Violation, len(o.violations))
	copy(vs, o.violations)
	return vs
}

// Messages returns the violation messages in evaluation order.
func (o Outcome) Messages() []string {
	msgs := make([]string, 0, len(o.violations))
	for _, v := range o.violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// Errors renders the messages as the stored validation errors text.
// It is empty when the outcome passed.
func (o Outcome) Errors() string {
	return strings.Join(o.Messages(), ErrorSeparator)
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Passed     bool                `json:"passed"`
		Score      int                 `json:"score"`
		Errors     string              `json:"errors"`
		Violations []invoice.Violation `json:"violations"`
	}{
		Passed:     o.Passed(),
		Score:      o.score,
		Errors:     o.Errors(),
		Violations: o.violations,
	})
}
