package invoice

import (
	"strings"
	"time"
)

// fieldCheck is a universal rule evaluated for every submission.
type fieldCheck struct {
	ruleKey  string
	category Category
	message  string
	fails    func(sub *Submission, today time.Time) bool
}

func (c *fieldCheck) RuleKey() string    { return c.ruleKey }
func (c *fieldCheck) Category() Category { return c.category }
func (c *fieldCheck) Message() string    { return c.message }

// Validate returns the violation and true when the submission breaks the rule.
func (c *fieldCheck) Validate(sub *Submission, today time.Time) (Violation, bool) {
	if !c.fails(sub, today) {
		return Violation{}, false
	}
	return Violation{
		RuleKey:  c.ruleKey,
		Category: c.category,
		Message:  c.message,
		Penalty:  c.category.Penalty(),
	}, true
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UniversalChecks returns the rules applied regardless of jurisdiction, in evaluation order.
func UniversalChecks() []*fieldCheck {
	return []*fieldCheck{
		{
			ruleKey: "date.document.not_future", category: CategoryFutureDocumentDate,
			message: "Document date cannot be in the future",
			fails: func(s *Submission, today time.Time) bool {
				return Day(s.DocumentDate).After(Day(today))
			},
		},
		{
			ruleKey: "date.processing.after_document", category: CategoryProcessingBeforeDocument,
			message: "Processing date cannot be before document date",
			fails: func(s *Submission, _ time.Time) bool {
				return Day(s.ProcessingDate).Before(Day(s.DocumentDate))
			},
		},
		{
			ruleKey: "req.sender", category: CategoryMissingSender,
			message: "Sender is required",
			fails:   func(s *Submission, _ time.Time) bool { return isBlank(s.Sender) },
		},
		{
			ruleKey: "req.receiver", category: CategoryMissingReceiver,
			message: "Receiver is required",
			fails:   func(s *Submission, _ time.Time) bool { return isBlank(s.Receiver) },
		},
	}
}
