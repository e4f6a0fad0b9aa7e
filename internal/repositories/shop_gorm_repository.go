package repositories

import (
	"fmt"

	"telar/internal/models"

	"gorm.io/gorm"
)

// GORMShopRepository is a GORM implementation of ShopRepository.
type GORMShopRepository struct {
	db *gorm.DB
}

// NewGORMShopRepository creates a new instance of GORMShopRepository.
func NewGORMShopRepository(db *gorm.DB) *GORMShopRepository {
	return &GORMShopRepository{
		db: db,
	}
}

// Exists reports whether a seller shop with the given ID exists.
func (r *GORMShopRepository) Exists(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.ArtisanShop{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check shop %s: %w", id, err)
	}
	return count > 0, nil
}
