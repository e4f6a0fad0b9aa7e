package models

import "time"

// CheckoutStatus is the lifecycle status of a checkout.
type CheckoutStatus string

const (
	CheckoutStatusCreated         CheckoutStatus = "created"
	CheckoutStatusAwaitingPayment CheckoutStatus = "awaiting_payment"
	CheckoutStatusPaid            CheckoutStatus = "paid"
	CheckoutStatusFailed          CheckoutStatus = "failed"
	CheckoutStatusCanceled        CheckoutStatus = "canceled"
	CheckoutStatusRefunded        CheckoutStatus = "refunded"
	CheckoutStatusPartialRefunded CheckoutStatus = "partial_refunded"
)

// CheckoutTransitions is the checkout state machine. paid is the only status
// from which the order split may run.
var CheckoutTransitions = StatusMachine[CheckoutStatus]{
	CheckoutStatusCreated:         {CheckoutStatusAwaitingPayment, CheckoutStatusFailed, CheckoutStatusCanceled},
	CheckoutStatusAwaitingPayment: {CheckoutStatusPaid, CheckoutStatusFailed},
	CheckoutStatusPaid:            {CheckoutStatusRefunded, CheckoutStatusPartialRefunded},
}

// Checkout is the immutable priced freeze of a cart. Exactly one checkout is
// created per idempotency key; the key's uniqueness is enforced by the
// storage layer so concurrent retries race safely to a single winner.
type Checkout struct {
	ID                string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID            string         `json:"cart_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	BuyerUserID       string         `json:"buyer_user_id" gorm:"type:varchar(36);not null;index"`
	Context           SaleContext    `json:"context" gorm:"type:varchar(16);not null"`
	ContextShopID     *string        `json:"context_shop_id,omitempty" gorm:"type:varchar(36)"`
	Currency          string         `json:"currency" gorm:"type:char(3);not null"`
	Status            CheckoutStatus `json:"status" gorm:"type:varchar(20);not null;default:'created';index"`
	SubtotalMinor     Minor          `json:"subtotal_minor" gorm:"type:text;not null;<-:create"`
	ChargesTotalMinor Minor          `json:"charges_total_minor" gorm:"type:text;not null;<-:create"`
	TotalMinor        Minor          `json:"total_minor" gorm:"type:text;not null;<-:create"`
	IdempotencyKey    string         `json:"idempotency_key" gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TotalsConsistent verifies total = subtotal + charges.
func (c *Checkout) TotalsConsistent() bool {
	return c.TotalMinor.Equal(c.SubtotalMinor.Add(c.ChargesTotalMinor))
}
