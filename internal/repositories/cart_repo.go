package repositories

import (
	"telar/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	Create(cart *models.Cart) error
	GetByID(id string) (*models.Cart, error)
	// FindOpenByBuyer returns the buyer's open cart, or (nil, nil) when the
	// buyer has none.
	FindOpenByBuyer(buyerUserID string) (*models.Cart, error)
	ListByBuyer(buyerUserID string) ([]models.Cart, error)
	GetItems(cartID string) ([]models.CartItem, error)
	// SaveItems persists new and merged items in one transaction, guarded by
	// the cart's optimistic version counter.
	SaveItems(cart *models.Cart, toCreate []models.CartItem, toUpdate []models.CartItem) error
	// Transition moves the cart between statuses with a single conditional
	// read-modify-write, so concurrent attempts cannot both succeed.
	Transition(cartID string, from, to models.CartStatus) (*models.Cart, error)
}
