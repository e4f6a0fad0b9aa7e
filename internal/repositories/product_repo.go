package repositories

import (
	"telar/internal/models"
)

// ProductRepository is the narrow catalog contract this service consumes:
// bulk lookups for guest-cart validation and pricing. Catalog CRUD is owned
// by another system.
type ProductRepository interface {
	FindByIDs(ids []string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
}
