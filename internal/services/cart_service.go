package services

import (
	"fmt"

	"telar/internal/models"
	"telar/internal/repositories"
)

// CartService handles the cart lifecycle: creation under the one-open-cart
// rule, item mutation with snapshot pricing, and state-machine transitions.
type CartService struct {
	cartRepo repositories.CartRepository
	userRepo repositories.UserRepository
	shopRepo repositories.ShopRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, userRepo repositories.UserRepository, shopRepo repositories.ShopRepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		userRepo: userRepo,
		shopRepo: shopRepo,
	}
}

// CreateCart opens a new cart for a buyer. A buyer may have at most one open
// cart at any time, so an existing open cart is a conflict, never silently
// shadowed by a second one.
func (s *CartService) CreateCart(buyerUserID string, context models.SaleContext, contextShopID *string, currency string) (*models.Cart, error) {
	exists, err := s.userRepo.Exists(buyerUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, buyerUserID)
	}

	if err := s.validateContext(context, contextShopID); err != nil {
		return nil, err
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code, got %q", models.ErrValidation, currency)
	}

	open, err := s.cartRepo.FindOpenByBuyer(buyerUserID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("%w: cart %s", models.ErrDuplicateOpenCart, open.ID)
	}

	cart := &models.Cart{
		BuyerUserID:   buyerUserID,
		Context:       context,
		ContextShopID: contextShopID,
		Currency:      currency,
		Status:        models.CartStatusOpen,
		Version:       1,
	}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddOrMergeItem adds a product line to an open cart, or merges it into an
// existing line with the same product/variant identity by summing
// quantities. The given unit price becomes the line's permanent snapshot.
func (s *CartService) AddOrMergeItem(cartID, productID, sellerShopID string, quantity int, unitPriceMinor models.Minor, priceSource models.PriceSource, priceRefID *string, variantKey string) (*models.CartItem, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if !cart.Editable() {
		return nil, fmt.Errorf("%w: cart %s is %s", models.ErrCartNotEditable, cart.ID, cart.Status)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1, got %d", models.ErrValidation, quantity)
	}
	if unitPriceMinor.Sign() < 0 {
		return nil, fmt.Errorf("%w: unit price cannot be negative", models.ErrValidation)
	}
	if priceSource != models.PriceSourceProductBase && priceSource != models.PriceSourceOverride {
		return nil, fmt.Errorf("%w: unknown price source %q", models.ErrValidation, priceSource)
	}

	shopExists, err := s.shopRepo.Exists(sellerShopID)
	if err != nil {
		return nil, err
	}
	if !shopExists {
		return nil, fmt.Errorf("%w: shop %s", models.ErrNotFound, sellerShopID)
	}

	identity := models.ItemIdentity(productID, variantKey)
	for i := range cart.Items {
		existing := &cart.Items[i]
		if models.ItemIdentity(existing.ProductID, existing.VariantKey) != identity {
			continue
		}
		merged := *existing
		merged.Quantity += quantity
		if err := s.cartRepo.SaveItems(cart, nil, []models.CartItem{merged}); err != nil {
			return nil, err
		}
		return &merged, nil
	}

	item := models.CartItem{
		CartID:         cart.ID,
		ProductID:      productID,
		SellerShopID:   sellerShopID,
		Quantity:       quantity,
		Currency:       cart.Currency,
		UnitPriceMinor: unitPriceMinor,
		PriceSource:    priceSource,
		PriceRefID:     priceRefID,
		VariantKey:     variantKey,
	}
	created := []models.CartItem{item}
	if err := s.cartRepo.SaveItems(cart, created, nil); err != nil {
		return nil, err
	}
	return &created[0], nil
}

// Transition moves a cart to a new status, rejecting anything the cart state
// machine does not allow.
func (s *CartService) Transition(cartID string, to models.CartStatus) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if !models.CartTransitions.Allowed(cart.Status, to) {
		return nil, fmt.Errorf("%w: cart %s -> %s", models.ErrInvalidTransition, cart.Status, to)
	}
	return s.cartRepo.Transition(cartID, cart.Status, to)
}

// GetCart retrieves a cart with its items.
func (s *CartService) GetCart(cartID string) (*models.Cart, error) {
	return s.cartRepo.GetByID(cartID)
}

// ListByBuyer retrieves all carts of a buyer.
func (s *CartService) ListByBuyer(buyerUserID string) ([]models.Cart, error) {
	return s.cartRepo.ListByBuyer(buyerUserID)
}

// validateContext enforces the tenant/marketplace shop rules: a tenant cart
// needs an existing context shop, a marketplace cart must not carry one.
func (s *CartService) validateContext(context models.SaleContext, contextShopID *string) error {
	switch context {
	case models.SaleContextTenant:
		if contextShopID == nil || *contextShopID == "" {
			return fmt.Errorf("%w: contextShopId is required when context is tenant", models.ErrValidation)
		}
		exists, err := s.shopRepo.Exists(*contextShopID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: shop %s", models.ErrNotFound, *contextShopID)
		}
	case models.SaleContextMarketplace:
		if contextShopID != nil && *contextShopID != "" {
			return fmt.Errorf("%w: contextShopId must be empty when context is marketplace", models.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown sale context %q", models.ErrValidation, context)
	}
	return nil
}
