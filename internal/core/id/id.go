// Package id provides UUIDv7 generation for locally generated identifiers
// (receipt row ids, outbox message ids).
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a new UUIDv7. Row ids generated in one session sort in entry order.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseOrNew parses s, or returns a fresh ID when s is empty.
// Clients may submit rows without ids; they get one on the server.
func ParseOrNew(s string) (ID, error) {
	if s == "" {
		return New(), nil
	}
	return uuid.Parse(s)
}

// Nil returns zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
