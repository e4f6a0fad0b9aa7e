package repositories

import (
	"telar/internal/models"
)

// CheckoutRepository defines the interface for checkout data access.
type CheckoutRepository interface {
	// CreateFromCart freezes a cart into its checkout in one transaction:
	// the conditional open -> locked transition, the item snapshot the
	// totals are computed from, and the checkout insert commit or roll back
	// together. A cart that is not open is models.ErrInvalidTransition; a
	// duplicate idempotency key or cart id is reported as
	// models.ErrConflict; the storage layer's uniqueness constraints are
	// the authority, not application-level checks.
	CreateFromCart(checkout *models.Checkout) error
	GetByID(id string) (*models.Checkout, error)
	// GetByIdempotencyKey returns (nil, nil) when no checkout carries the key.
	GetByIdempotencyKey(key string) (*models.Checkout, error)
	// GetByCartID returns (nil, nil) when the cart has no checkout.
	GetByCartID(cartID string) (*models.Checkout, error)
	ListByBuyer(buyerUserID string) ([]models.Checkout, error)
	// UpdateStatus moves a checkout between statuses with a conditional
	// update keyed on the expected current status, so concurrent attempts
	// cannot both succeed.
	UpdateStatus(id string, from, to models.CheckoutStatus) (*models.Checkout, error)
}
