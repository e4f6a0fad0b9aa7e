package services

import (
	"fmt"

	"telar/internal/models"
)

// CommissionCalculator computes what a seller receives after marketplace
// commission is deducted from an order's gross subtotal. It is a pure
// collaborator: no side effects, same inputs give the same output.
type CommissionCalculator interface {
	ComputeNet(grossMinor models.Minor, currency, sellerShopID string) (models.Minor, error)
}

// BasisPointCommission deducts a flat commission expressed in basis points
// (1 bps = 0.01%), truncating in the platform's favor.
type BasisPointCommission struct {
	Bps int64
}

// NewBasisPointCommission creates a calculator with the given rate.
func NewBasisPointCommission(bps int64) *BasisPointCommission {
	return &BasisPointCommission{Bps: bps}
}

// ComputeNet returns gross minus the commission fee.
func (c *BasisPointCommission) ComputeNet(grossMinor models.Minor, currency, sellerShopID string) (models.Minor, error) {
	if c.Bps < 0 || c.Bps > 10000 {
		return models.Minor{}, fmt.Errorf("%w: commission rate %d bps out of range", models.ErrValidation, c.Bps)
	}
	fee := grossMinor.MulDivInt64(c.Bps, 10000)
	return grossMinor.Sub(fee), nil
}
