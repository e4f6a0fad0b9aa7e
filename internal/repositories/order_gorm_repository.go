package repositories

import (
	"errors"
	"fmt"
	"time"

	"telar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// CreateForCheckout writes the entire fan-out of a checkout split in one
// transaction: every order, every order item, and the source cart's
// locked -> converted transition. A failure anywhere rolls the whole thing
// back, leaving the checkout paid with zero orders, which is safely
// retryable. The unique (checkout_id, seller_shop_id) index turns a
// concurrent double-split into models.ErrConflict for the loser.
func (r *GORMOrderRepository) CreateForCheckout(checkout *models.Checkout, orders []*models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			if order.ID == "" {
				order.ID = uuid.New().String()
			}
			if order.Status == "" {
				order.Status = models.OrderStatusPendingFulfillment
			}
			for i := range order.Items {
				if order.Items[i].ID == "" {
					order.Items[i].ID = uuid.New().String()
				}
				order.Items[i].OrderID = order.ID
			}
			if err := tx.Create(order).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: checkout %s already split", models.ErrConflict, checkout.ID)
				}
				return fmt.Errorf("failed to create order for shop %s: %w", order.SellerShopID, err)
			}
		}

		now := time.Now()
		res := tx.Model(&models.Cart{}).
			Where("id = ? AND status = ?", checkout.CartID, models.CartStatusLocked).
			Updates(map[string]interface{}{
				"status":       models.CartStatusConverted,
				"converted_at": now,
				"version":      gorm.Expr("version + 1"),
				"updated_at":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to convert cart %s: %w", checkout.CartID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: cart %s is not locked", models.ErrInvalidTransition, checkout.CartID)
		}
		return nil
	})
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListByCheckout retrieves all orders derived from a checkout.
func (r *GORMOrderRepository) ListByCheckout(checkoutID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("checkout_id = ?", checkoutID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for checkout %s: %w", checkoutID, err)
	}
	return orders, nil
}

// UpdateStatus moves an order between statuses with a conditional update
// keyed on the expected current status.
func (r *GORMOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.Order
		if err := r.db.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: order %s", models.ErrNotFound, id)
			}
			return nil, fmt.Errorf("failed to reload order %s: %w", id, err)
		}
		return nil, fmt.Errorf("%w: order %s is %s, not %s", models.ErrInvalidTransition, id, current.Status, from)
	}
	return r.GetByID(id)
}
