package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/payment"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/pricing"
	"github.com/google/uuid"
)

type CreateOrderResult struct {
	OrderID         string
	ProviderOrderID string
	Totals          pricing.Totals
}

// CreateOrder snapshots the cart, recomputes totals server-side, creates the
// provider order and persists the local one. The payment widget re-invokes
// its create hook on re-render, so duplicate triggers with the same
// idempotency key collapse to a single in-flight call, and a key that has
// already produced an order returns the stored ids.
func (s *Service) CreateOrder(ctx context.Context, userID string, address domain.ShippingAddress, idempotencyKey string) (*CreateOrderResult, error) {
	if !address.Complete() {
		return nil, fmt.Errorf("%w: missing %v", ErrIncompleteAddress, address.MissingFields())
	}

	v, err, _ := s.sfg.Do(idempotencyKey, func() (interface{}, error) {
		return s.createOrder(ctx, userID, address, idempotencyKey)
	})
	if err != nil {
		return nil, err
	}

	return v.(*CreateOrderResult), nil
}

func (s *Service) createOrder(ctx context.Context, userID string, address domain.ShippingAddress, idempotencyKey string) (*CreateOrderResult, error) {
	existing, err := s.repo.GetOrderByIdempotencyKey(ctx, idempotencyKey)
	if err != nil && !errors.Is(err, orders.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		// This checkout attempt already created an order; hand back the
		// stored ids instead of creating a second one.
		log.Printf("duplicate create-order request, idempotency_key = %v, order_id = %v", idempotencyKey, existing.ID)
		return &CreateOrderResult{
			OrderID:         existing.ID.String(),
			ProviderOrderID: existing.ProviderOrderID,
			Totals: pricing.Totals{
				Subtotal: existing.Subtotal,
				Shipping: existing.Shipping,
				Tax:      existing.Tax,
				Total:    existing.Total,
				Currency: existing.Currency,
			},
		}, nil
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Authoritative totals: recomputed here from stored cart lines, never
	// taken from the client.
	totals := pricing.ComputeTotals(cart.Items, s.pricing)

	orderID := uuid.New()
	providerOrder, err := s.provider.CreateOrder(ctx, payment.CreateOrderRequest{
		ReferenceID: orderID.String(),
		Amount:      totals.Total,
		Currency:    totals.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider order: %w", err)
	}

	order := &domain.Order{
		ID:              orderID,
		UserID:          userID,
		ProviderOrderID: providerOrder.ID,
		Items:           snapshotItems(cart.Items),
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Currency:        totals.Currency,
		Status:          domain.OrderStatusPaymentPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Address:         address,
	}

	event, err := statusEvent(order)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateOrder(ctx, order, idempotencyKey, event); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	return &CreateOrderResult{
		OrderID:         order.ID.String(),
		ProviderOrderID: order.ProviderOrderID,
		Totals:          totals,
	}, nil
}

func snapshotItems(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			Ref:       line.Ref,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			Subtotal:  line.Price * float64(line.Quantity),
		})
	}
	return items
}

func statusEvent(order *domain.Order) ([]byte, error) {
	payload := map[string]interface{}{
		"order_id":       order.ID.String(),
		"user_id":        order.UserID,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"total":          order.Total,
		"currency":       order.Currency,
		"occurred_at":    time.Now(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status event: %w", err)
	}
	return data, nil
}
