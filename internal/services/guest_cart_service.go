package services

import (
	"errors"
	"fmt"
	"log"

	"telar/internal/models"
	"telar/internal/repositories"
)

// GuestCartItem is one line of an unauthenticated session's cart: a product
// reference, an optional variant, and a quantity. Prices are never trusted
// from the guest side; they are snapshotted from the catalog at merge time.
type GuestCartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// GuestCartResult reports what a sync did.
type GuestCartResult struct {
	CartID      string `json:"cart_id"`
	ItemsSynced int    `json:"items_synced"`
}

// GuestCartService merges a guest session's item list into the buyer's open
// cart. The merge is lossy and non-failing: lines referencing missing or
// inactive products are dropped silently, since guest carts routinely carry
// stale data.
type GuestCartService struct {
	cartRepo        repositories.CartRepository
	productRepo     repositories.ProductRepository
	cartService     *CartService
	defaultCurrency string
}

// NewGuestCartService creates a new GuestCartService. defaultCurrency is
// used when a fresh cart has to be opened for the buyer.
func NewGuestCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, cartService *CartService, defaultCurrency string) *GuestCartService {
	return &GuestCartService{
		cartRepo:        cartRepo,
		productRepo:     productRepo,
		cartService:     cartService,
		defaultCurrency: defaultCurrency,
	}
}

// SyncGuestCart reconciles guest lines into the buyer's open cart, creating
// a marketplace cart if none exists. Lines are keyed by product + variant;
// matches merge by summing quantities, the rest insert new rows, and the
// whole batch persists in one transaction. Calling it twice with the same
// input doubles quantities: these are merge semantics, not set semantics.
func (s *GuestCartService) SyncGuestCart(buyerUserID string, items []GuestCartItem) (*GuestCartResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: guest cart has no items", models.ErrValidation)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1 for product %s", models.ErrValidation, item.ProductID)
		}
	}

	cart, err := s.cartRepo.FindOpenByBuyer(buyerUserID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart, err = s.cartService.CreateCart(buyerUserID, models.SaleContextMarketplace, nil, s.defaultCurrency)
		if err != nil {
			// Two concurrent syncs can race to open the cart; the loser
			// picks up the winner's.
			if errors.Is(err, models.ErrConflict) {
				cart, err = s.cartRepo.FindOpenByBuyer(buyerUserID)
				if err != nil {
					return nil, err
				}
			}
			if cart == nil {
				return nil, err
			}
		}
	}
	if !cart.Editable() {
		return nil, fmt.Errorf("%w: cart %s is %s", models.ErrCartNotEditable, cart.ID, cart.Status)
	}

	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	existing, err := s.cartRepo.GetItems(cart.ID)
	if err != nil {
		return nil, err
	}
	existingByIdentity := make(map[string]*models.CartItem, len(existing))
	for i := range existing {
		item := &existing[i]
		existingByIdentity[models.ItemIdentity(item.ProductID, item.VariantKey)] = item
	}

	var toCreate []models.CartItem
	pendingCreate := make(map[string]int)
	merged := make(map[string]*models.CartItem)

	for _, line := range items {
		product, ok := productByID[line.ProductID]
		if !ok || !product.Active {
			log.Printf("Dropping stale guest cart line for product %s", line.ProductID)
			continue
		}

		identity := models.ItemIdentity(product.ID, line.VariantID)

		if match, ok := existingByIdentity[identity]; ok {
			match.Quantity += line.Quantity
			merged[identity] = match
			continue
		}
		if idx, ok := pendingCreate[identity]; ok {
			toCreate[idx].Quantity += line.Quantity
			continue
		}

		unitPriceMinor, err := models.MinorFromMajor(product.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to convert price for product %s: %w", product.ID, err)
		}

		var metadata map[string]string
		if line.VariantID != "" {
			metadata = map[string]string{"variantId": line.VariantID}
		}
		toCreate = append(toCreate, models.CartItem{
			CartID:         cart.ID,
			ProductID:      product.ID,
			SellerShopID:   product.ShopID,
			Quantity:       line.Quantity,
			Currency:       cart.Currency,
			UnitPriceMinor: unitPriceMinor,
			PriceSource:    models.PriceSourceProductBase,
			VariantKey:     line.VariantID,
			Metadata:       metadata,
		})
		pendingCreate[identity] = len(toCreate) - 1
	}

	toUpdate := make([]models.CartItem, 0, len(merged))
	for _, item := range merged {
		toUpdate = append(toUpdate, *item)
	}

	if err := s.cartRepo.SaveItems(cart, toCreate, toUpdate); err != nil {
		return nil, err
	}

	return &GuestCartResult{
		CartID:      cart.ID,
		ItemsSynced: len(toCreate) + len(toUpdate),
	}, nil
}
