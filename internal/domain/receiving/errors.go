package receiving

import (
	"fmt"

	"stockreceipt/internal/core/apperror"
)

// RejectionKind classifies why a batch could not be assembled.
type RejectionKind string

const (
	RejectMissingSupplier  RejectionKind = "missing_supplier"
	RejectNoItems          RejectionKind = "no_items"
	RejectValidationFailed RejectionKind = "validation_failed"
)

// AssemblyRejection is returned by AssembleBatch. Nothing was sent to the store.
type AssemblyRejection struct {
	Kind    RejectionKind
	Message string

	// Field points the caller at the input to fix: "supplierRef" or "lines".
	Field string

	// Rows holds the submitted rows with ValidationErrors filled in.
	// Only set for RejectValidationFailed.
	Rows []ReceivedLine

	// Invalid is the number of rows that failed validation.
	Invalid int
}

func (r *AssemblyRejection) Error() string {
	return "assembly rejected: " + r.Message
}

// Unwrap exposes the rejection as an AppError so HTTP middleware renders it as a 400.
func (r *AssemblyRejection) Unwrap() error {
	appErr := apperror.NewValidation(r.Message).
		WithDetail("kind", string(r.Kind)).
		WithDetail("field", r.Field)
	if r.Kind == RejectValidationFailed {
		violations := make(map[string][]string, r.Invalid)
		for _, row := range r.Rows {
			if len(row.ValidationErrors) > 0 {
				violations[row.RowID.String()] = row.ValidationErrors
			}
		}
		appErr.WithDetail("violations", violations)
	}
	return appErr
}

func errMissingSupplier() *AssemblyRejection {
	return &AssemblyRejection{Kind: RejectMissingSupplier, Message: "missing supplier", Field: "supplierRef"}
}

func errNoItems() *AssemblyRejection {
	return &AssemblyRejection{Kind: RejectNoItems, Message: "no items to receive", Field: "lines"}
}

func errValidationFailed(rows []ReceivedLine, invalid int) *AssemblyRejection {
	return &AssemblyRejection{
		Kind:    RejectValidationFailed,
		Message: fmt.Sprintf("validation failed for %d item(s)", invalid),
		Field:   "lines",
		Rows:    rows,
		Invalid: invalid,
	}
}

// FailureKind classifies why a single line could not be applied.
type FailureKind string

const (
	FailureMissingWarehouse FailureKind = "missing_warehouse"
	FailureTransport        FailureKind = "transport_error"
	FailureDomainUpdate     FailureKind = "domain_update_error"
	FailureDomainCreate     FailureKind = "domain_create_error"
	FailureCancelled        FailureKind = "cancelled"
)

// LineFailure describes a failed line. Message keeps the store's text verbatim.
type LineFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}
