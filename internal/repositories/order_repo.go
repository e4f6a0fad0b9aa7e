package repositories

import (
	"telar/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateForCheckout persists every order and order item of a checkout
	// split and converts the source cart, all inside one transaction: either
	// the whole fan-out commits or none of it does.
	CreateForCheckout(checkout *models.Checkout, orders []*models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByCheckout(checkoutID string) ([]models.Order, error)
	UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error)
}
