package handlers

import (
	"telar/internal/models"
	"telar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	cartService  *services.CartService
	guestService *services.GuestCartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService, guestService *services.GuestCartService) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		guestService: guestService,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Post("/sync-guest", h.HandleSyncGuestCart)
	cartRoutes.Get("/", h.HandleListCarts)
	cartRoutes.Get("/:id", h.HandleGetCart)
	cartRoutes.Post("/:id/items", h.HandleAddItem)
	cartRoutes.Patch("/:id/status", h.HandleUpdateStatus)
}

// CreateCartRequest is the payload for POST /carts.
type CreateCartRequest struct {
	BuyerUserID   string  `json:"buyer_user_id" validate:"required"`
	Context       string  `json:"context" validate:"required,oneof=marketplace tenant"`
	ContextShopID *string `json:"context_shop_id"`
	Currency      string  `json:"currency" validate:"required,len=3"`
}

// AddItemRequest is the payload for POST /carts/:id/items. Monetary amounts
// travel as decimal strings of minor units.
type AddItemRequest struct {
	ProductID      string  `json:"product_id" validate:"required"`
	SellerShopID   string  `json:"seller_shop_id" validate:"required"`
	Quantity       int     `json:"quantity" validate:"required,min=1"`
	UnitPriceMinor string  `json:"unit_price_minor" validate:"required"`
	PriceSource    string  `json:"price_source" validate:"required,oneof=product_base override"`
	PriceRefID     *string `json:"price_ref_id"`
	VariantKey     string  `json:"variant_key"`
}

// UpdateCartStatusRequest is the payload for PATCH /carts/:id/status.
type UpdateCartStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open locked converted abandoned"`
}

// SyncGuestCartRequest is the payload for POST /carts/sync-guest.
type SyncGuestCartRequest struct {
	BuyerUserID string                   `json:"buyer_user_id" validate:"required"`
	Items       []services.GuestCartItem `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateCart opens a new cart for a buyer.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	var req CreateCartRequest
	if !parseBody(c, &req) {
		return nil
	}

	cart, err := h.cartService.CreateCart(req.BuyerUserID, models.SaleContext(req.Context), req.ContextShopID, req.Currency)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleSyncGuestCart merges a guest session's items into the buyer's open
// cart.
func (h *CartHandler) HandleSyncGuestCart(c *fiber.Ctx) error {
	var req SyncGuestCartRequest
	if !parseBody(c, &req) {
		return nil
	}

	result, err := h.guestService.SyncGuestCart(req.BuyerUserID, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleListCarts retrieves a buyer's carts.
func (h *CartHandler) HandleListCarts(c *fiber.Ctx) error {
	buyerUserID := c.Query("buyer_user_id")
	if buyerUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "buyer_user_id query parameter is required",
		})
	}
	carts, err := h.cartService.ListByBuyer(buyerUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(carts)
}

// HandleGetCart retrieves a single cart with its items.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleAddItem adds or merges an item into an open cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if !parseBody(c, &req) {
		return nil
	}

	unitPrice, err := models.MinorFromString(req.UnitPriceMinor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "unit_price_minor must be a decimal string of minor units",
			"error":   err.Error(),
		})
	}

	item, err := h.cartService.AddOrMergeItem(
		c.Params("id"),
		req.ProductID,
		req.SellerShopID,
		req.Quantity,
		unitPrice,
		models.PriceSource(req.PriceSource),
		req.PriceRefID,
		req.VariantKey,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateStatus transitions a cart through its state machine.
func (h *CartHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateCartStatusRequest
	if !parseBody(c, &req) {
		return nil
	}

	cart, err := h.cartService.Transition(c.Params("id"), models.CartStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}
