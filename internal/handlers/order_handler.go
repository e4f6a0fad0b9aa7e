package handlers

import (
	"telar/internal/models"
	"telar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkouts/:id/split", h.HandleSplitCheckout)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// UpdateOrderStatusRequest is the payload for PATCH /orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending_fulfillment delivered canceled refunded"`
}

// HandleSplitCheckout fans a paid checkout out into per-seller orders:
// 201 when this call performed the split, 200 when it resolved to orders an
// earlier call already created.
func (h *OrderHandler) HandleSplitCheckout(c *fiber.Ctx) error {
	orders, created, err := h.orderService.SplitCheckout(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(orders)
	}
	return c.JSON(orders)
}

// HandleListOrders retrieves the orders derived from a checkout.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	checkoutID := c.Query("checkout_id")
	if checkoutID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "checkout_id query parameter is required",
		})
	}
	orders, err := h.orderService.ListByCheckout(checkoutID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves a single order with its items.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if !parseBody(c, &req) {
		return nil
	}

	order, err := h.orderService.UpdateStatus(c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
