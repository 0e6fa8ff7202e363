package validator

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/cel-go/cel"

	"regnify/internal/domain"
	"regnify/internal/validator/invoice"
)

// Registry maps a jurisdiction to its ordered format rules.
// Lookups never fail: a jurisdiction without rules yields an empty list.
type Registry struct {
	mu    sync.RWMutex
	env   *cel.Env
	rules map[domain.Jurisdiction][]*invoice.FormatRule
}

// NewRegistry creates a Registry loaded with the built-in format rules.
func NewRegistry() (*Registry, error) {
	r, err := NewEmptyRegistry()
	if err != nil {
		return nil, err
	}
	for _, spec := range invoice.BuiltinFormatRules() {
		if err := r.Register(spec); err != nil {
			return nil, fmt.Errorf("registering builtin rule: %w", err)
		}
	}
	return r, nil
}

// NewEmptyRegistry creates a Registry with no rules.
func NewEmptyRegistry() (*Registry, error) {
	env, err := invoice.NewRuleEnv()
	if err != nil {
		return nil, err
	}
	return &Registry{
		env:   env,
		rules: make(map[domain.Jurisdiction][]*invoice.FormatRule),
	}, nil
}

// Register compiles spec and appends it to its jurisdiction's rule list.
func (r *Registry) Register(spec invoice.RuleSpec) error {
	if spec.Jurisdiction == "" {
		return fmt.Errorf("rule %s: jurisdiction is required", spec.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rules[spec.Jurisdiction] {
		if existing.RuleKey() == spec.Key {
			return fmt.Errorf("rule %s already registered for %s", spec.Key, spec.Jurisdiction)
		}
	}

	compiled, err := invoice.CompileFormatRule(r.env, spec)
	if err != nil {
		return err
	}
	r.rules[spec.Jurisdiction] = append(r.rules[spec.Jurisdiction], compiled)
	return nil
}

// Rules returns a copy of the rules for j in evaluation order.
func (r *Registry) Rules(j domain.Jurisdiction) []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := r.rules[j]
	out := make([]Validator, 0, len(rules))
	for _, rule := range rules {
		out = append(out, rule)
	}
	return out
}

// Specs returns the declarations of the rules for j.
func (r *Registry) Specs(j domain.Jurisdiction) []invoice.RuleSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := r.rules[j]
	out := make([]invoice.RuleSpec, 0, len(rules))
	for _, rule := range rules {
		out = append(out, rule.Spec())
	}
	return out
}

// Jurisdictions lists jurisdictions that have at least one rule. Enumerated
// jurisdictions come first in declaration order, followed by any others.
func (r *Registry) Jurisdictions() []domain.Jurisdiction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Jurisdiction, 0, len(r.rules))
	seen := make(map[domain.Jurisdiction]bool, len(r.rules))
	for _, j := range domain.Jurisdictions {
		if len(r.rules[j]) > 0 {
			out = append(out, j)
			seen[j] = true
		}
	}
	var extra []domain.Jurisdiction
	for j, rules := range r.rules {
		if !seen[j] && len(rules) > 0 {
			extra = append(extra, j)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
