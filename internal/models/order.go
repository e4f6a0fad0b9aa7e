package models

import "time"

// OrderStatus is the lifecycle status of a per-seller order.
type OrderStatus string

const (
	OrderStatusPendingFulfillment OrderStatus = "pending_fulfillment"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCanceled           OrderStatus = "canceled"
	OrderStatusRefunded           OrderStatus = "refunded"
)

// OrderTransitions is the order state machine: pending_fulfillment moves to
// delivered, or sideways to canceled/refunded.
var OrderTransitions = StatusMachine[OrderStatus]{
	OrderStatusPendingFulfillment: {OrderStatusDelivered, OrderStatusCanceled, OrderStatusRefunded},
}

// Order is one seller shop's slice of a checkout. The set of orders for a
// checkout partitions its cart items completely and disjointly by seller,
// and the gross subtotals sum to the checkout subtotal.
type Order struct {
	ID                 string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CheckoutID         string      `json:"checkout_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_checkout_seller"`
	SellerShopID       string      `json:"seller_shop_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_checkout_seller"`
	Currency           string      `json:"currency" gorm:"type:char(3);not null"`
	GrossSubtotalMinor Minor       `json:"gross_subtotal_minor" gorm:"type:text;not null;<-:create"`
	NetToSellerMinor   Minor       `json:"net_to_seller_minor" gorm:"type:text;not null;<-:create"`
	Status             OrderStatus `json:"status" gorm:"type:varchar(24);not null;default:'pending_fulfillment';index"`
	Items              []OrderItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// OrderItem is immutable line-item history: price and quantity are copied
// verbatim from the originating cart item at split time and never touched
// again. There is no update path for order items anywhere in the system.
type OrderItem struct {
	ID             string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string            `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID      string            `json:"product_id" gorm:"type:varchar(36);not null;<-:create"`
	Quantity       int               `json:"quantity" gorm:"not null;<-:create"`
	Currency       string            `json:"currency" gorm:"type:char(3);not null;<-:create"`
	UnitPriceMinor Minor             `json:"unit_price_minor" gorm:"type:text;not null;<-:create"`
	LineTotalMinor Minor             `json:"line_total_minor" gorm:"type:text;not null;<-:create"`
	Metadata       map[string]string `json:"metadata,omitempty" gorm:"serializer:json;<-:create"`
	CreatedAt      time.Time         `json:"created_at"`
}
