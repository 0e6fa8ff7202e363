package invoice

import (
	"fmt"
	"log"
	"time"

	"github.com/google/cel-go/cel"

	"regnify/internal/domain"
)

// RuleSpec declares a jurisdiction format rule. Expression is a CEL predicate
// that holds for a conforming submission; the rule is violated when it is false.
type RuleSpec struct {
	Key          string              `json:"key"`
	Jurisdiction domain.Jurisdiction `json:"jurisdiction"`
	Message      string              `json:"message"`
	Penalty      int                 `json:"penalty"`
	Expression   string              `json:"expression"`
}

// BuiltinFormatRules returns the shipped jurisdiction rules in evaluation order.
func BuiltinFormatRules() []RuleSpec {
	return []RuleSpec{
		{
			Key: "fmt.de.sender_legal_form", Jurisdiction: domain.JurisdictionGermany,
			Message:    "German companies must end with GmbH, AG or KG",
			Expression: `sender.endsWith("GmbH") || sender.endsWith("AG") || sender.endsWith("KG")`,
		},
		{
			Key: "fmt.de.invoice_number", Jurisdiction: domain.JurisdictionGermany,
			Message:    "German invoices must have 10-digit invoice number",
			Expression: `invoice_number.matches("^[0-9]{10}$")`,
		},
		{
			Key: "fmt.fr.invoice_number", Jurisdiction: domain.JurisdictionFrance,
			Message:    "French invoices must start with 'FR' followed by numbers",
			Expression: `invoice_number.matches("^FR[0-9]+$")`,
		},
		{
			Key: "fmt.uk.invoice_number", Jurisdiction: domain.JurisdictionUK,
			Message:    "UK invoices must start with 'UK' followed by 8 digits",
			Expression: `invoice_number.matches("^UK[0-9]{8}$")`,
		},
		{
			Key: "fmt.es.invoice_number", Jurisdiction: domain.JurisdictionSpain,
			Message:    "Spanish invoices must follow format ES12345678X",
			Expression: `invoice_number.matches("^ES[0-9]{8}[A-Z]$")`,
		},
		{
			Key: "fmt.it.invoice_number", Jurisdiction: domain.JurisdictionItaly,
			Message:    "Italian invoices must start with 'IT' followed by 11 digits",
			Expression: `invoice_number.matches("^IT[0-9]{11}$")`,
		},
	}
}

// NewRuleEnv creates the CEL environment format rules are compiled against.
func NewRuleEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("invoice_number", cel.StringType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("receiver", cel.StringType),
		cel.Variable("document_type", cel.StringType),
		cel.Variable("jurisdiction", cel.StringType),
		cel.Variable("file_name", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// FormatRule is a compiled RuleSpec.
type FormatRule struct {
	spec    RuleSpec
	program cel.Program
}

// CompileFormatRule type-checks spec against env. A zero Penalty takes the
// jurisdiction_format category default.
func CompileFormatRule(env *cel.Env, spec RuleSpec) (*FormatRule, error) {
	if spec.Key == "" {
		return nil, fmt.Errorf("rule key is required")
	}
	if spec.Message == "" {
		return nil, fmt.Errorf("rule %s: message is required", spec.Key)
	}
	if spec.Penalty < 0 {
		return nil, fmt.Errorf("rule %s: penalty must not be negative", spec.Key)
	}
	if spec.Penalty == 0 {
		spec.Penalty = CategoryJurisdictionFormat.Penalty()
	}

	ast, issues := env.Compile(spec.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", spec.Key, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", spec.Key, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", spec.Key, err)
	}

	return &FormatRule{spec: spec, program: program}, nil
}

func (r *FormatRule) RuleKey() string    { return r.spec.Key }
func (r *FormatRule) Category() Category { return CategoryJurisdictionFormat }
func (r *FormatRule) Message() string    { return r.spec.Message }

// Spec returns the declaration the rule was compiled from.
func (r *FormatRule) Spec() RuleSpec { return r.spec }

// Validate evaluates the rule. An evaluation error counts as a violation.
func (r *FormatRule) Validate(sub *Submission, _ time.Time) (Violation, bool) {
	fileName := ""
	if sub.File != nil {
		fileName = sub.File.Name
	}
	out, _, err := r.program.Eval(map[string]any{
		"invoice_number": sub.InvoiceNumber,
		"sender":         sub.Sender,
		"receiver":       sub.Receiver,
		"document_type":  string(sub.DocumentType),
		"jurisdiction":   string(sub.Jurisdiction),
		"file_name":      fileName,
	})
	if err != nil {
		log.Printf("invoice.FormatRule: evaluating %s: %v", r.spec.Key, err)
		return r.violation(), true
	}
	if ok, isBool := out.Value().(bool); isBool && ok {
		return Violation{}, false
	}
	return r.violation(), true
}

func (r *FormatRule) violation() Violation {
	return Violation{
		RuleKey:  r.spec.Key,
		Category: CategoryJurisdictionFormat,
		Message:  r.spec.Message,
		Penalty:  r.spec.Penalty,
	}
}
