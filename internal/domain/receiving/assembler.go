package receiving

import (
	"strings"
)

// AssembleBatch turns the entered rows into an executable batch.
//
// It is all-or-nothing: on any rejection no batch is produced. Rows without a
// chosen item, and rows whose quantity is blank or zero, are placeholders and
// are left out. Negative or non-numeric quantities stay in and fail validation.
// Returned lines are copies; the caller's rows are not modified.
func AssembleBatch(rows []ReceivedLine, meta Metadata, rules Rules) (*ReceiptBatch, error) {
	if strings.TrimSpace(meta.SupplierRef) == "" {
		return nil, errMissingSupplier()
	}

	// positions[i] is the index in rows of candidates[i].
	candidates := make([]ReceivedLine, 0, len(rows))
	positions := make([]int, 0, len(rows))
	for i, row := range rows {
		if !row.HasItem() || isPlaceholderQuantity(row) {
			continue
		}
		candidates = append(candidates, row)
		positions = append(positions, i)
	}
	if len(candidates) == 0 {
		return nil, errNoItems()
	}

	invalid := 0
	for i := range candidates {
		violations := Validate(candidates[i], rules)
		candidates[i].ValidationErrors = violations
		if len(violations) > 0 {
			invalid++
		}
	}
	if invalid > 0 {
		annotated := make([]ReceivedLine, len(rows))
		copy(annotated, rows)
		for i, pos := range positions {
			annotated[pos].ValidationErrors = candidates[i].ValidationErrors
		}
		return nil, errValidationFailed(annotated, invalid)
	}

	if !meta.PaymentStatus.Valid() {
		meta.PaymentStatus = PaymentPending
	}

	return &ReceiptBatch{
		Metadata: meta,
		Lines:    candidates,
	}, nil
}

func isPlaceholderQuantity(row ReceivedLine) bool {
	return !row.ReceivedQuantity.IsSet() || row.ReceivedQuantity.IsZero()
}
