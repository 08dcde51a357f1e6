package store

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by store operations. Handlers map these to HTTP
// statuses; callers distinguish them with errors.Is / errors.As.
var (
	// ErrNotFound marks a referenced store, product, inventory record or
	// transfer request that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks malformed input: missing fields, bad identifiers,
	// out-of-range values. Always detected before any write.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden marks a role or store-attachment authorization failure.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition marks a structurally impossible status transition,
	// distinct from an authorization failure on a legal one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvariant marks a structural invariant violation: a record that is
	// both/neither container and standard item, a same-store transfer, or a
	// product whose card details contradict its type.
	ErrInvariant = errors.New("invariant violation")
)

// CapacityError reports a mutation that would exceed a store's capacity.
type CapacityError struct {
	StoreID   string
	Required  float64
	Available float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity at store %s: required %g, available %g",
		e.StoreID, e.Required, e.Available)
}

// InsufficientQuantityError reports a requested quantity exceeding what the
// source inventory record currently holds.
type InsufficientQuantityError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity of product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
