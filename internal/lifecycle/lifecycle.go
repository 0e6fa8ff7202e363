// Package lifecycle moves invoices through the processing, business and
// provider-response statuses. The three axes always change together.
package lifecycle

import (
	"time"

	"regnify/internal/domain"
	"regnify/internal/validator"
)

// Status is the tri-axis state of an invoice.
type Status struct {
	Processing domain.ProcessingStatus `json:"status"`
	Business   domain.BusinessStatus   `json:"business_status"`
	Provider   domain.ProviderResponse `json:"provider_response"`
}

var (
	// Initial is the state of an invoice before it is validated.
	Initial = Status{domain.ProcessingPending, domain.BusinessPendingReview, domain.ProviderPending}
	// Accepted is reached by a passing validation or a manual process.
	Accepted = Status{domain.ProcessingComplete, domain.BusinessApproved, domain.ProviderSuccess}
	// Failed is reached by a validation with at least one violation.
	Failed = Status{domain.ProcessingError, domain.BusinessRejected, domain.ProviderFailed}
)

// FromOutcome maps a validation outcome to its status. There is no partial state.
func FromOutcome(o validator.Outcome) Status {
	if o.Passed() {
		return Accepted
	}
	return Failed
}

// Of reads the current status of inv.
func Of(inv *domain.Invoice) Status {
	return Status{inv.Status, inv.BusinessStatus, inv.ProviderResponse}
}

func set(inv *domain.Invoice, s Status) {
	inv.Status = s.Processing
	inv.BusinessStatus = s.Business
	inv.ProviderResponse = s.Provider
}

// Init prepares a new invoice in the Initial state.
func Init(inv *domain.Invoice, now time.Time) {
	set(inv, Initial)
	inv.CreatedAt = now
	inv.UpdatedAt = now
}

// ApplyValidation overwrites the status, errors text and score of inv with o.
// A soft-deleted invoice is left untouched.
func ApplyValidation(inv *domain.Invoice, o validator.Outcome, now time.Time) error {
	if inv.Deleted {
		return domain.ErrInvoiceDeleted
	}
	set(inv, FromOutcome(o))
	inv.ValidationErrors = o.Errors()
	inv.ValidationScore = o.Score()
	inv.UpdatedAt = now
	return nil
}

// Process forces inv into the Accepted state without re-validating.
func Process(inv *domain.Invoice, actor string, now time.Time) error {
	if inv.Deleted {
		return domain.ErrInvoiceDeleted
	}
	set(inv, Accepted)
	inv.ProcessedBy = &actor
	inv.ProcessedAt = &now
	inv.UpdatedAt = now
	return nil
}

// SoftDelete marks inv deleted. The status axes are not changed.
func SoftDelete(inv *domain.Invoice, actor string, now time.Time) error {
	if inv.Deleted {
		return domain.ErrInvoiceDeleted
	}
	inv.Deleted = true
	inv.DeletedAt = &now
	inv.DeletedBy = &actor
	inv.UpdatedAt = now
	return nil
}
