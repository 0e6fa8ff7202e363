package invoice

// Category tags a violation so scoring never depends on message text.
type Category string

const (
	CategoryFutureDocumentDate       Category = "future_document_date"
	CategoryProcessingBeforeDocument Category = "processing_before_document"
	CategoryMissingSender            Category = "missing_sender"
	CategoryMissingReceiver          Category = "missing_receiver"
	CategoryJurisdictionFormat       Category = "jurisdiction_format"
)

// categoryPenalties is the single source of penalty values.
var categoryPenalties = map[Category]int{
	CategoryFutureDocumentDate:       20,
	CategoryProcessingBeforeDocument: 20,
	CategoryMissingSender:            15,
	CategoryMissingReceiver:          15,
	CategoryJurisdictionFormat:       10,
}

// Penalty returns the default score deduction for the category, 0 for unknown categories.
func (c Category) Penalty() int {
	return categoryPenalties[c]
}

// Violation is a single failed rule.
type Violation struct {
	RuleKey  string   `json:"rule_key"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Penalty  int      `json:"penalty"`
}
