package handlers

import (
	"telar/internal/models"
	"telar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for checkouts.
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkouts")
	checkoutRoutes.Post("/", h.HandleCreateCheckout)
	checkoutRoutes.Get("/", h.HandleListCheckouts)
	checkoutRoutes.Get("/:id", h.HandleGetCheckout)
	checkoutRoutes.Patch("/:id/status", h.HandleUpdateStatus)
}

// CreateCheckoutRequest is the payload for POST /checkouts. The idempotency
// key makes the call safe to retry: a timed-out caller must re-issue the
// same key rather than assume failure.
type CreateCheckoutRequest struct {
	IdempotencyKey    string  `json:"idempotency_key" validate:"required"`
	CartID            string  `json:"cart_id" validate:"required"`
	Context           string  `json:"context" validate:"required,oneof=marketplace tenant"`
	ContextShopID     *string `json:"context_shop_id"`
	ChargesTotalMinor string  `json:"charges_total_minor" validate:"required"`
}

// UpdateCheckoutStatusRequest is the payload for PATCH /checkouts/:id/status.
type UpdateCheckoutStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=created awaiting_payment paid failed canceled refunded partial_refunded"`
}

// HandleCreateCheckout freezes a cart into a checkout. A retry with the same
// idempotency key returns the existing checkout with 200 instead of 201.
func (h *CheckoutHandler) HandleCreateCheckout(c *fiber.Ctx) error {
	var req CreateCheckoutRequest
	if !parseBody(c, &req) {
		return nil
	}

	charges, err := models.MinorFromString(req.ChargesTotalMinor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "charges_total_minor must be a decimal string of minor units",
			"error":   err.Error(),
		})
	}

	checkout, created, err := h.checkoutService.CreateCheckout(
		req.IdempotencyKey,
		req.CartID,
		models.SaleContext(req.Context),
		req.ContextShopID,
		charges,
	)
	if err != nil {
		return respondError(c, err)
	}

	// An idempotent retry resolves to the existing resource: that is a
	// success for the caller, not a conflict.
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(checkout)
}

// HandleListCheckouts retrieves a buyer's checkouts.
func (h *CheckoutHandler) HandleListCheckouts(c *fiber.Ctx) error {
	buyerUserID := c.Query("buyer_user_id")
	if buyerUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "buyer_user_id query parameter is required",
		})
	}
	checkouts, err := h.checkoutService.ListByBuyer(buyerUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(checkouts)
}

// HandleGetCheckout retrieves a checkout by ID.
func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	checkout, err := h.checkoutService.GetCheckout(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(checkout)
}

// HandleUpdateStatus transitions a checkout through its state machine.
func (h *CheckoutHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateCheckoutStatusRequest
	if !parseBody(c, &req) {
		return nil
	}

	checkout, err := h.checkoutService.UpdateStatus(c.Params("id"), models.CheckoutStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(checkout)
}
