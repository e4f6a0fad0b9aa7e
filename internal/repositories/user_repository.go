package repositories

import (
	"telar/internal/models"
)

// UserRepository is the narrow account contract this service consumes.
type UserRepository interface {
	Exists(id string) (bool, error)
	GetByID(id string) (*models.User, error)
}

// ShopRepository is the narrow seller-shop contract, used for sale-context
// validation and order seller attachment.
type ShopRepository interface {
	Exists(id string) (bool, error)
}
