package repositories

import (
	"errors"
	"fmt"
	"time"

	"telar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCheckoutRepository is a GORM implementation of CheckoutRepository.
type GORMCheckoutRepository struct {
	db *gorm.DB
}

// NewGORMCheckoutRepository creates a new instance of GORMCheckoutRepository.
func NewGORMCheckoutRepository(db *gorm.DB) *GORMCheckoutRepository {
	return &GORMCheckoutRepository{
		db: db,
	}
}

// CreateFromCart locks the cart and persists its checkout in one transaction.
// The lock is a conditional open -> locked update; the items the totals are
// computed from are read after that update, inside the same transaction, so
// the snapshot cannot miss a concurrent cart mutation. Any failure (an empty
// cart, a mixed-currency cart, a duplicate key) rolls the lock back and
// leaves the cart open.
//
// The caller fills CartID, BuyerUserID, Context, ContextShopID, Currency,
// ChargesTotalMinor and IdempotencyKey; SubtotalMinor and TotalMinor are
// computed here from the frozen items. The unique indexes on idempotency_key
// and cart_id make concurrent creates race to a single winner; the loser gets
// models.ErrConflict and is expected to fetch the winner's row.
func (r *GORMCheckoutRepository) CreateFromCart(checkout *models.Checkout) error {
	if checkout.ID == "" {
		checkout.ID = uuid.New().String()
	}
	if checkout.Status == "" {
		checkout.Status = models.CheckoutStatusCreated
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Cart{}).
			Where("id = ? AND status = ?", checkout.CartID, models.CartStatusOpen).
			Updates(map[string]interface{}{
				"status":     models.CartStatusLocked,
				"locked_at":  now,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to lock cart %s: %w", checkout.CartID, res.Error)
		}
		if res.RowsAffected == 0 {
			var current models.Cart
			if err := tx.First(&current, "id = ?", checkout.CartID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: cart %s", models.ErrNotFound, checkout.CartID)
				}
				return fmt.Errorf("failed to reload cart %s: %w", checkout.CartID, err)
			}
			return fmt.Errorf("%w: cart %s is %s, not %s", models.ErrInvalidTransition, checkout.CartID, current.Status, models.CartStatusOpen)
		}

		var items []models.CartItem
		if err := tx.Where("cart_id = ?", checkout.CartID).Order("created_at ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("failed to get items for cart %s: %w", checkout.CartID, err)
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: cart %s is empty", models.ErrValidation, checkout.CartID)
		}

		subtotal := models.NewMinor(0)
		for i := range items {
			if items[i].Currency != checkout.Currency {
				return fmt.Errorf("%w: item %s is %s, cart is %s", models.ErrCurrencyMismatch, items[i].ID, items[i].Currency, checkout.Currency)
			}
			subtotal = subtotal.Add(items[i].LineTotalMinor())
		}
		checkout.SubtotalMinor = subtotal
		checkout.TotalMinor = subtotal.Add(checkout.ChargesTotalMinor)

		if err := tx.Create(checkout).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: checkout for cart %s", models.ErrConflict, checkout.CartID)
			}
			return fmt.Errorf("failed to create checkout: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a checkout by its ID.
func (r *GORMCheckoutRepository) GetByID(id string) (*models.Checkout, error) {
	var checkout models.Checkout
	if err := r.db.First(&checkout, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: checkout %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get checkout %s: %w", id, err)
	}
	return &checkout, nil
}

// GetByIdempotencyKey retrieves the checkout carrying a key, or (nil, nil)
// when there is none.
func (r *GORMCheckoutRepository) GetByIdempotencyKey(key string) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.Where("idempotency_key = ?", key).First(&checkout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkout by idempotency key: %w", err)
	}
	return &checkout, nil
}

// GetByCartID retrieves the checkout for a cart, or (nil, nil) when the cart
// has not been checked out.
func (r *GORMCheckoutRepository) GetByCartID(cartID string) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.Where("cart_id = ?", cartID).First(&checkout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkout for cart %s: %w", cartID, err)
	}
	return &checkout, nil
}

// ListByBuyer retrieves all checkouts of a buyer, newest first.
func (r *GORMCheckoutRepository) ListByBuyer(buyerUserID string) ([]models.Checkout, error) {
	var checkouts []models.Checkout
	err := r.db.Where("buyer_user_id = ?", buyerUserID).
		Order("created_at DESC").
		Find(&checkouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checkouts for buyer %s: %w", buyerUserID, err)
	}
	return checkouts, nil
}

// UpdateStatus moves a checkout from one status to another with a conditional
// update keyed on the current status. Two concurrent attempts cannot both
// succeed: the loser's update matches zero rows.
func (r *GORMCheckoutRepository) UpdateStatus(id string, from, to models.CheckoutStatus) (*models.Checkout, error) {
	res := r.db.Model(&models.Checkout{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update checkout %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.Checkout
		if err := r.db.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: checkout %s", models.ErrNotFound, id)
			}
			return nil, fmt.Errorf("failed to reload checkout %s: %w", id, err)
		}
		return nil, fmt.Errorf("%w: checkout %s is %s, not %s", models.ErrInvalidTransition, id, current.Status, from)
	}
	return r.GetByID(id)
}
