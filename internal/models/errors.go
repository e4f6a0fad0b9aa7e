package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by repositories, services and handlers. Specific
// failures wrap one of the four category sentinels so callers can match the
// category with errors.Is without knowing every variant.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrNotEditable = errors.New("not editable")
)

var (
	// ErrDuplicateOpenCart is returned when a buyer already has an open cart.
	ErrDuplicateOpenCart = fmt.Errorf("%w: buyer already has an open cart", ErrConflict)

	// ErrDuplicateCheckout is returned when a cart already has a checkout
	// under a different idempotency key.
	ErrDuplicateCheckout = fmt.Errorf("%w: checkout already exists for cart", ErrConflict)

	// ErrInvalidTransition is returned for a status change the state machine
	// does not allow.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrConflict)

	// ErrCartNotEditable is returned when an item mutation hits a cart that
	// is locked, converted or abandoned.
	ErrCartNotEditable = fmt.Errorf("%w: cart is not open", ErrNotEditable)

	// ErrVersionConflict is returned when an optimistic write loses the race
	// against a concurrent cart mutation.
	ErrVersionConflict = fmt.Errorf("%w: cart was modified concurrently", ErrConflict)

	// ErrCheckoutNotPaid is returned when an order split is requested for a
	// checkout that has not reached the paid status.
	ErrCheckoutNotPaid = fmt.Errorf("%w: checkout is not paid", ErrConflict)

	// ErrCurrencyMismatch is returned when an item's currency differs from
	// its cart's.
	ErrCurrencyMismatch = fmt.Errorf("%w: currency mismatch", ErrValidation)
)
