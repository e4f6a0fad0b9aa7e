package services

import (
	"errors"
	"fmt"
	"log"

	"telar/internal/models"
	"telar/internal/repositories"
)

// OrderService derives per-seller orders from a paid checkout and drives the
// order status machine.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	checkoutRepo repositories.CheckoutRepository
	cartRepo     repositories.CartRepository
	commission   CommissionCalculator
	mqClient     EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, checkoutRepo repositories.CheckoutRepository, cartRepo repositories.CartRepository, commission CommissionCalculator, mqClient EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		checkoutRepo: checkoutRepo,
		cartRepo:     cartRepo,
		commission:   commission,
		mqClient:     mqClient,
	}
}

// SplitCheckout fans a paid checkout out into one order per seller shop,
// partitioning the source cart's items completely and disjointly. The whole
// fan-out, including the cart's locked -> converted transition, commits in
// one transaction. Re-invoking for an already-split checkout returns the
// existing orders unchanged. The boolean result reports whether this call
// performed the split (true) or resolved to existing orders (false).
func (s *OrderService) SplitCheckout(checkoutID string) ([]models.Order, bool, error) {
	checkout, err := s.checkoutRepo.GetByID(checkoutID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.orderRepo.ListByCheckout(checkoutID)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		return existing, false, nil
	}

	if checkout.Status != models.CheckoutStatusPaid {
		return nil, false, fmt.Errorf("%w: checkout %s is %s", models.ErrCheckoutNotPaid, checkout.ID, checkout.Status)
	}

	items, err := s.cartRepo.GetItems(checkout.CartID)
	if err != nil {
		return nil, false, err
	}
	if len(items) == 0 {
		return nil, false, fmt.Errorf("%w: cart %s has no items to split", models.ErrValidation, checkout.CartID)
	}

	// Group by seller shop, preserving first-seen order so the fan-out is
	// deterministic.
	var sellerIDs []string
	itemsBySeller := make(map[string][]models.CartItem)
	for _, item := range items {
		if _, seen := itemsBySeller[item.SellerShopID]; !seen {
			sellerIDs = append(sellerIDs, item.SellerShopID)
		}
		itemsBySeller[item.SellerShopID] = append(itemsBySeller[item.SellerShopID], item)
	}

	sumGross := models.NewMinor(0)
	orders := make([]*models.Order, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		group := itemsBySeller[sellerID]

		gross := models.NewMinor(0)
		orderItems := make([]models.OrderItem, 0, len(group))
		for _, item := range group {
			lineTotal := item.LineTotalMinor()
			gross = gross.Add(lineTotal)
			// Price continuity: unit price, quantity and line total are
			// copied verbatim from the cart item, never recomputed.
			orderItems = append(orderItems, models.OrderItem{
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				Currency:       item.Currency,
				UnitPriceMinor: item.UnitPriceMinor,
				LineTotalMinor: lineTotal,
				Metadata:       item.Metadata,
			})
		}

		net, err := s.commission.ComputeNet(gross, checkout.Currency, sellerID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to compute net for shop %s: %w", sellerID, err)
		}

		orders = append(orders, &models.Order{
			CheckoutID:         checkout.ID,
			SellerShopID:       sellerID,
			Currency:           checkout.Currency,
			GrossSubtotalMinor: gross,
			NetToSellerMinor:   net,
			Status:             models.OrderStatusPendingFulfillment,
			Items:              orderItems,
		})
		sumGross = sumGross.Add(gross)
	}

	// The orders must reconcile against the checkout before anything is
	// written: sum of gross subtotals == checkout subtotal.
	if !sumGross.Equal(checkout.SubtotalMinor) {
		return nil, false, fmt.Errorf("%w: order gross sum %s does not match checkout subtotal %s",
			models.ErrConflict, sumGross.String(), checkout.SubtotalMinor.String())
	}

	if err := s.orderRepo.CreateForCheckout(checkout, orders); err != nil {
		// A concurrent split won the race; its orders are the result.
		if errors.Is(err, models.ErrConflict) {
			winners, err := s.orderRepo.ListByCheckout(checkoutID)
			return winners, false, err
		}
		return nil, false, err
	}

	orderIDs := make([]string, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	s.publish(EventOrderSplit, map[string]interface{}{
		"checkoutID": checkout.ID,
		"orderIDs":   orderIDs,
		"sellers":    len(orders),
	})

	result := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, *order)
	}
	return result, true, nil
}

// UpdateStatus moves an order to a new status, validated against the order
// state machine. Fulfillment and payment collaborators drive this.
func (s *OrderService) UpdateStatus(orderID string, to models.OrderStatus) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !models.OrderTransitions.Allowed(order.Status, to) {
		return nil, fmt.Errorf("%w: order %s -> %s", models.ErrInvalidTransition, order.Status, to)
	}

	updated, err := s.orderRepo.UpdateStatus(orderID, order.Status, to)
	if err != nil {
		return nil, err
	}

	s.publish(EventOrderStatusChanged, map[string]interface{}{
		"orderID": updated.ID,
		"status":  string(updated.Status),
	})
	return updated, nil
}

// GetOrder retrieves an order with its items.
func (s *OrderService) GetOrder(orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(orderID)
}

// ListByCheckout retrieves the orders derived from a checkout.
func (s *OrderService) ListByCheckout(checkoutID string) ([]models.Order, error) {
	return s.orderRepo.ListByCheckout(checkoutID)
}

func (s *OrderService) publish(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
