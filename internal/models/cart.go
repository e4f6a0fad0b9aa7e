package models

import "time"

// SaleContext says whether a cart or checkout belongs to the open
// marketplace or to a single tenant shop's storefront.
type SaleContext string

const (
	SaleContextMarketplace SaleContext = "marketplace"
	SaleContextTenant      SaleContext = "tenant"
)

// CartStatus is the lifecycle status of a cart.
type CartStatus string

const (
	CartStatusOpen      CartStatus = "open"
	CartStatusLocked    CartStatus = "locked"
	CartStatusConverted CartStatus = "converted"
	CartStatusAbandoned CartStatus = "abandoned"
)

// CartTransitions is the cart state machine: a single forward path
// open -> locked -> converted, with an abandoned side-branch from open.
var CartTransitions = StatusMachine[CartStatus]{
	CartStatusOpen:   {CartStatusLocked, CartStatusAbandoned},
	CartStatusLocked: {CartStatusConverted},
}

// PriceSource records where a cart item's price snapshot came from.
type PriceSource string

const (
	PriceSourceProductBase PriceSource = "product_base"
	PriceSourceOverride    PriceSource = "override"
)

// Cart is a buyer's mutable shopping cart. At most one cart per buyer may be
// open at any time; items may only be mutated while the cart is open.
type Cart struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerUserID   string      `json:"buyer_user_id" gorm:"type:varchar(36);index;not null" validate:"required"`
	Context       SaleContext `json:"context" gorm:"type:varchar(16);not null;default:'marketplace'" validate:"required,oneof=marketplace tenant"`
	ContextShopID *string     `json:"context_shop_id,omitempty" gorm:"type:varchar(36)"`
	Currency      string      `json:"currency" gorm:"type:char(3);not null" validate:"required,len=3"`
	Status        CartStatus  `json:"status" gorm:"type:varchar(16);not null;default:'open';index"`
	Version       int         `json:"version" gorm:"not null;default:1"`
	Items         []CartItem  `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	LockedAt      *time.Time  `json:"locked_at,omitempty"`
	ConvertedAt   *time.Time  `json:"converted_at,omitempty"`
}

// Editable reports whether item mutations are allowed.
func (c *Cart) Editable() bool {
	return c.Status == CartStatusOpen
}

// CartItem is a line in a cart. UnitPriceMinor is a snapshot taken when the
// item was added or merged and is never recomputed from the live catalog:
// the gorm write permission restricts price fields to creation time.
type CartItem struct {
	ID             string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID         string            `json:"cart_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product_variant"`
	ProductID      string            `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product_variant" validate:"required"`
	SellerShopID   string            `json:"seller_shop_id" gorm:"type:varchar(36);not null;index" validate:"required"`
	Quantity       int               `json:"quantity" gorm:"not null" validate:"required,min=1"`
	Currency       string            `json:"currency" gorm:"type:char(3);not null;<-:create" validate:"required,len=3"`
	UnitPriceMinor Minor             `json:"unit_price_minor" gorm:"type:text;not null;<-:create"`
	PriceSource    PriceSource       `json:"price_source" gorm:"type:varchar(16);not null;<-:create" validate:"required,oneof=product_base override"`
	PriceRefID     *string           `json:"price_ref_id,omitempty" gorm:"type:varchar(36);<-:create"`
	VariantKey     string            `json:"variant_key" gorm:"type:varchar(128);not null;default:'';uniqueIndex:idx_cart_product_variant;<-:create"`
	Metadata       map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// LineTotalMinor is the item's unit price times its quantity.
func (i *CartItem) LineTotalMinor() Minor {
	return i.UnitPriceMinor.MulInt(i.Quantity)
}

// ItemIdentity builds the merge key for a product/variant pair. Two lines
// with the same identity must be merged by summing quantities, never stored
// as separate rows.
func ItemIdentity(productID, variantKey string) string {
	return productID + ":" + variantKey
}
