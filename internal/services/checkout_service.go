package services

import (
	"errors"
	"fmt"
	"log"

	"telar/internal/models"
	"telar/internal/repositories"
)

// CheckoutService freezes carts into priced checkouts, exactly once per
// idempotency key, and drives the checkout status machine.
type CheckoutService struct {
	checkoutRepo repositories.CheckoutRepository
	cartRepo     repositories.CartRepository
	userRepo     repositories.UserRepository
	mqClient     EventPublisher
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(checkoutRepo repositories.CheckoutRepository, cartRepo repositories.CartRepository, userRepo repositories.UserRepository, mqClient EventPublisher) *CheckoutService {
	return &CheckoutService{
		checkoutRepo: checkoutRepo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
		mqClient:     mqClient,
	}
}

// CreateCheckout freezes a cart into a checkout. The operation is safe to
// retry: a call with a key that already produced a checkout returns that
// checkout unchanged, without recomputing anything. A different key against
// an already-checked-out cart is a conflict. On first call the repository
// locks the cart, snapshots its items and persists the checkout in a single
// transaction, so a failed insert leaves the cart open and retryable.
// The checkout's sale context is the cart's; a caller asking for a different
// context or shop than the cart was created under is rejected.
// The boolean result reports whether this call created the checkout (true)
// or resolved to an existing one (false).
func (s *CheckoutService) CreateCheckout(idempotencyKey, cartID string, context models.SaleContext, contextShopID *string, chargesTotalMinor models.Minor) (*models.Checkout, bool, error) {
	if idempotencyKey == "" {
		return nil, false, fmt.Errorf("%w: idempotency key is required", models.ErrValidation)
	}
	if chargesTotalMinor.Sign() < 0 {
		return nil, false, fmt.Errorf("%w: charges cannot be negative", models.ErrValidation)
	}

	// Preconditions, in order: cart, buyer, context match, idempotency.
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, false, err
	}

	buyerExists, err := s.userRepo.Exists(cart.BuyerUserID)
	if err != nil {
		return nil, false, err
	}
	if !buyerExists {
		return nil, false, fmt.Errorf("%w: user %s", models.ErrNotFound, cart.BuyerUserID)
	}

	if context != cart.Context {
		return nil, false, fmt.Errorf("%w: cart %s was created in context %s, not %s", models.ErrValidation, cartID, cart.Context, context)
	}
	if shopIDValue(contextShopID) != shopIDValue(cart.ContextShopID) {
		return nil, false, fmt.Errorf("%w: contextShopId does not match cart %s", models.ErrValidation, cartID)
	}

	existing, err := s.checkoutRepo.GetByIdempotencyKey(idempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.CartID != cartID {
			return nil, false, fmt.Errorf("%w: idempotency key %s belongs to another checkout", models.ErrConflict, idempotencyKey)
		}
		return existing, false, nil
	}

	byCart, err := s.checkoutRepo.GetByCartID(cartID)
	if err != nil {
		return nil, false, err
	}
	if byCart != nil {
		return nil, false, fmt.Errorf("%w: checkout %s", models.ErrDuplicateCheckout, byCart.ID)
	}

	checkout := &models.Checkout{
		CartID:            cartID,
		BuyerUserID:       cart.BuyerUserID,
		Context:           cart.Context,
		ContextShopID:     cart.ContextShopID,
		Currency:          cart.Currency,
		Status:            models.CheckoutStatusCreated,
		ChargesTotalMinor: chargesTotalMinor,
		IdempotencyKey:    idempotencyKey,
	}

	// The repository locks the cart, freezes the item snapshot, computes
	// the totals and inserts, all in one transaction. Losing that
	// transaction to a concurrent attempt surfaces as a conflict; if the
	// loser was a genuine retry its checkout resolves via the key lookup.
	if err := s.checkoutRepo.CreateFromCart(checkout); err != nil {
		if errors.Is(err, models.ErrConflict) {
			resolved, err := s.resolveLockedCart(idempotencyKey, cartID)
			return resolved, false, err
		}
		return nil, false, err
	}

	s.publish(EventCheckoutCreated, map[string]interface{}{
		"checkoutID": checkout.ID,
		"cartID":     checkout.CartID,
		"buyerID":    checkout.BuyerUserID,
		"total":      checkout.TotalMinor.String(),
		"currency":   checkout.Currency,
	})

	return checkout, true, nil
}

// resolveLockedCart handles the loser of a checkout race: if a checkout with
// the same key exists this is a retry and that checkout wins; if the cart
// was checked out under another key it is a duplicate; otherwise the cart is
// simply not editable.
func (s *CheckoutService) resolveLockedCart(idempotencyKey, cartID string) (*models.Checkout, error) {
	existing, err := s.checkoutRepo.GetByIdempotencyKey(idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.CartID == cartID {
		return existing, nil
	}

	byCart, err := s.checkoutRepo.GetByCartID(cartID)
	if err != nil {
		return nil, err
	}
	if byCart != nil {
		return nil, fmt.Errorf("%w: checkout %s", models.ErrDuplicateCheckout, byCart.ID)
	}
	return nil, fmt.Errorf("%w: cart %s", models.ErrCartNotEditable, cartID)
}

// UpdateStatus moves a checkout to a new status, validated against the
// checkout state machine. The write is conditional on the status the
// transition was validated against, so a concurrent transition cannot slip
// in between the check and the update.
func (s *CheckoutService) UpdateStatus(checkoutID string, to models.CheckoutStatus) (*models.Checkout, error) {
	checkout, err := s.checkoutRepo.GetByID(checkoutID)
	if err != nil {
		return nil, err
	}
	if !models.CheckoutTransitions.Allowed(checkout.Status, to) {
		return nil, fmt.Errorf("%w: checkout %s -> %s", models.ErrInvalidTransition, checkout.Status, to)
	}

	updated, err := s.checkoutRepo.UpdateStatus(checkoutID, checkout.Status, to)
	if err != nil {
		return nil, err
	}

	s.publish(EventCheckoutStatusChanged, map[string]interface{}{
		"checkoutID": updated.ID,
		"status":     string(updated.Status),
	})
	return updated, nil
}

// GetCheckout retrieves a checkout by ID.
func (s *CheckoutService) GetCheckout(checkoutID string) (*models.Checkout, error) {
	return s.checkoutRepo.GetByID(checkoutID)
}

// ListByBuyer retrieves all checkouts of a buyer.
func (s *CheckoutService) ListByBuyer(buyerUserID string) ([]models.Checkout, error) {
	return s.checkoutRepo.ListByBuyer(buyerUserID)
}

func shopIDValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *CheckoutService) publish(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
