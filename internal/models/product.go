package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog collaborator's view of a sellable item: just enough
// for guest-cart validation and price snapshotting. Catalog management lives
// outside this service.
type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ShopID    string          `json:"shop_id" gorm:"type:varchar(36);not null;index"`
	Name      string          `json:"name" gorm:"type:varchar(200)"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Active    bool            `json:"active" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
