package repositories

import (
	"errors"
	"fmt"
	"time"

	"telar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Create persists a new cart.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.Status == "" {
		cart.Status = models.CartStatusOpen
	}
	if cart.Version == 0 {
		cart.Version = 1
	}
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// GetByID retrieves a cart with its items.
func (r *GORMCartRepository) GetByID(id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get cart %s: %w", id, err)
	}
	return &cart, nil
}

// FindOpenByBuyer returns the buyer's open cart, or (nil, nil) when none
// exists.
func (r *GORMCartRepository) FindOpenByBuyer(buyerUserID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").
		Where("buyer_user_id = ? AND status = ?", buyerUserID, models.CartStatusOpen).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open cart for buyer %s: %w", buyerUserID, err)
	}
	return &cart, nil
}

// ListByBuyer retrieves all carts belonging to a buyer, newest first.
func (r *GORMCartRepository) ListByBuyer(buyerUserID string) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.Preload("Items").
		Where("buyer_user_id = ?", buyerUserID).
		Order("created_at DESC").
		Find(&carts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list carts for buyer %s: %w", buyerUserID, err)
	}
	return carts, nil
}

// GetItems retrieves all items of a cart.
func (r *GORMCartRepository) GetItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("cart_id = ?", cartID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// SaveItems writes new and merged items in a single transaction. The cart's
// version counter is checked and incremented first; losing that check means
// another writer got in between, and the whole batch is rolled back.
// Item updates touch only the quantity column: price fields are write-once.
func (r *GORMCartRepository) SaveItems(cart *models.Cart, toCreate []models.CartItem, toUpdate []models.CartItem) error {
	if len(toCreate) == 0 && len(toUpdate) == 0 {
		return nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cart{}).
			Where("id = ? AND version = ? AND status = ?", cart.ID, cart.Version, models.CartStatusOpen).
			Updates(map[string]interface{}{
				"version":    cart.Version + 1,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to bump cart version: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var current models.Cart
			if err := tx.First(&current, "id = ?", cart.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: cart %s", models.ErrNotFound, cart.ID)
				}
				return fmt.Errorf("failed to reload cart %s: %w", cart.ID, err)
			}
			if !current.Editable() {
				return models.ErrCartNotEditable
			}
			return models.ErrVersionConflict
		}

		for i := range toCreate {
			if toCreate[i].ID == "" {
				toCreate[i].ID = uuid.New().String()
			}
			toCreate[i].CartID = cart.ID
		}
		if len(toCreate) > 0 {
			if err := tx.Create(&toCreate).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: duplicate product/variant row in cart %s", models.ErrConflict, cart.ID)
				}
				return fmt.Errorf("failed to create cart items: %w", err)
			}
		}
		for i := range toUpdate {
			res := tx.Model(&models.CartItem{}).
				Where("id = ?", toUpdate[i].ID).
				Update("quantity", toUpdate[i].Quantity)
			if res.Error != nil {
				return fmt.Errorf("failed to update cart item %s: %w", toUpdate[i].ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: cart item %s", models.ErrNotFound, toUpdate[i].ID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cart.Version++
	return nil
}

// Transition moves the cart from one status to another with a conditional
// update keyed on the current status, stamping lockedAt/convertedAt as the
// state machine requires. Two concurrent attempts cannot both succeed: the
// loser's update matches zero rows.
func (r *GORMCartRepository) Transition(cartID string, from, to models.CartStatus) (*models.Cart, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	switch to {
	case models.CartStatusLocked:
		updates["locked_at"] = now
	case models.CartStatusConverted:
		updates["converted_at"] = now
	}

	res := r.db.Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to transition cart %s: %w", cartID, res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.Cart
		if err := r.db.First(&current, "id = ?", cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: cart %s", models.ErrNotFound, cartID)
			}
			return nil, fmt.Errorf("failed to reload cart %s: %w", cartID, err)
		}
		return nil, fmt.Errorf("%w: cart %s is %s, not %s", models.ErrInvalidTransition, cartID, current.Status, from)
	}

	return r.GetByID(cartID)
}
