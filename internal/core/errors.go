package core

import (
	"errors"
	"fmt"
)

// Validation and state-machine errors. All are detected before any mutation is
// attempted, so a failed call leaves no partial state behind.
var (
	// ErrInvalidCart is the umbrella for cart validation failures; the
	// specific errors below wrap it, so errors.Is(err, ErrInvalidCart)
	// matches any of them.
	ErrInvalidCart     = errors.New("invalid cart")
	ErrEmptyCart       = fmt.Errorf("%w: cart has no items", ErrInvalidCart)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be >= 1", ErrInvalidCart)
	ErrInvalidPrice    = fmt.Errorf("%w: unit price must be >= 0", ErrInvalidCart)

	ErrInvalidRate = errors.New("interest rate must be >= 0")

	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrPaymentNotFound    = errors.New("payment day not found")
	ErrPaymentAlreadyPaid = errors.New("payment already marked paid")
	ErrOrderClosed        = errors.New("order is completed or cancelled")
)

// PersistenceError wraps a storage-layer failure so callers can tell transient
// infrastructure problems apart from business-rule rejections. The schedule
// and pricing logic never retries; retries belong to the calling layer.
type PersistenceError struct {
	Op  string // the storage operation that failed, e.g. "insert order"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// persistErr wraps err as a *PersistenceError. nil stays nil.
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
