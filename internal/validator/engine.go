package validator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"regnify/internal/domain"
	"regnify/internal/validator/invoice"
)

var tracer = otel.Tracer("regnify/validator")

// Engine evaluates submissions against the universal checks followed by the
// jurisdiction's registered format rules. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	registry  *Registry
	universal []Validator
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry, opts ...Option) *Engine {
	checks := invoice.UniversalChecks()
	universal := make([]Validator, 0, len(checks))
	for _, c := range checks {
		universal = append(universal, c)
	}

	e := &Engine{
		registry:  registry,
		universal: universal,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the rule registry the engine reads from.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Evaluate validates sub. Business rule failures are reported in the Outcome;
// an error is returned only when a required date is missing.
func (e *Engine) Evaluate(ctx context.Context, sub *invoice.Submission) (Outcome, error) {
	_, span := tracer.Start(ctx, "validator.Evaluate", trace.WithAttributes(
		attribute.String("invoice.number", sub.InvoiceNumber),
		attribute.String("invoice.jurisdiction", string(sub.Jurisdiction)),
	))
	defer span.End()

	if sub.DocumentDate.IsZero() || sub.ProcessingDate.IsZero() {
		span.RecordError(domain.ErrMissingDate)
		return Outcome{}, domain.ErrMissingDate
	}

	today := e.now()
	var violations []invoice.Violation
	for _, v := range e.universal {
		if violation, failed := v.Validate(sub, today); failed {
			violations = append(violations, violation)
		}
	}
	if sub.Jurisdiction != "" {
		for _, v := range e.registry.Rules(sub.Jurisdiction) {
			if violation, failed := v.Validate(sub, today); failed {
				violations = append(violations, violation)
			}
		}
	}

	outcome := NewOutcome(violations)
	span.SetAttributes(
		attribute.Int("validation.score", outcome.Score()),
		attribute.Int("validation.violations", len(violations)),
	)
	return outcome, nil
}
