package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/payment"
	"github.com/google/uuid"
)

type Outcome string

const (
	// OutcomeCompleted finalizes the purchase: cart cleared, buyer routed
	// to the confirmation view.
	OutcomeCompleted Outcome = "COMPLETED"

	// OutcomePendingVerification means the provider accepted the capture
	// but has not settled it. The buyer gets a distinct pending view and
	// keeps their cart.
	OutcomePendingVerification Outcome = "PENDING_VERIFICATION"
)

type CaptureOutcome struct {
	OrderID       string
	Outcome       Outcome
	PaymentStatus domain.PaymentStatus
}

// Capture drives the approve step of the payment widget: both ids must have
// been produced by a prior CreateOrder, and the provider's capture result
// decides the order's fate.
func (s *Service) Capture(ctx context.Context, providerOrderID, localOrderID, idempotencyKey string) (*CaptureOutcome, error) {
	log.Printf("capturing payment, idempotency_key = %v, order_id = %v", idempotencyKey, localOrderID)

	if providerOrderID == "" || localOrderID == "" {
		return nil, ErrMissingOrderIDs
	}

	orderID, err := uuid.Parse(localOrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid local order id", ErrMissingOrderIDs)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.ProviderOrderID != providerOrderID {
		return nil, ErrOrderMismatch
	}

	// Only an order still waiting on its payment may be captured; a paid,
	// declined or cancelled order must not reach the provider again.
	if !domain.CanTransitionTo(order.Status, domain.OrderStatusPaid) {
		return nil, fmt.Errorf("%w: order %v is %s", ErrNotCapturable, order.ID, order.Status)
	}

	result, err := s.provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to capture payment: %w", err)
	}

	switch result.Status {
	case payment.CaptureStatusCompleted:
		return s.finalize(ctx, order, result.CaptureID)

	case payment.CaptureStatusPending:
		return s.markPendingVerification(ctx, order, result.CaptureID)

	default:
		if recErr := s.recordPayment(ctx, order, domain.OrderStatusDeclined, domain.PaymentStatusFailed, result.CaptureID); recErr != nil {
			log.Printf("failed to record declined payment for order %v: %v", order.ID, recErr)
		}
		return nil, ErrPaymentDeclined
	}
}

func (s *Service) finalize(ctx context.Context, order *domain.Order, captureID string) (*CaptureOutcome, error) {
	if err := s.recordPayment(ctx, order, domain.OrderStatusPaid, domain.PaymentStatusCompleted, captureID); err != nil {
		return nil, err
	}

	// The purchase is done; a cart-clear failure must not undo it.
	if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
		log.Printf("failed to clear cart for user %v after order %v: %v", order.UserID, order.ID, err)
	}

	return &CaptureOutcome{
		OrderID:       order.ID.String(),
		Outcome:       OutcomeCompleted,
		PaymentStatus: domain.PaymentStatusCompleted,
	}, nil
}

func (s *Service) markPendingVerification(ctx context.Context, order *domain.Order, captureID string) (*CaptureOutcome, error) {
	if err := s.recordPayment(ctx, order, domain.OrderStatusPendingVerification, domain.PaymentStatusPendingVerification, captureID); err != nil {
		return nil, err
	}

	return &CaptureOutcome{
		OrderID:       order.ID.String(),
		Outcome:       OutcomePendingVerification,
		PaymentStatus: domain.PaymentStatusPendingVerification,
	}, nil
}

func (s *Service) recordPayment(ctx context.Context, order *domain.Order, status domain.OrderStatus, payStatus domain.PaymentStatus, captureID string) error {
	if !domain.CanTransitionTo(order.Status, status) {
		return fmt.Errorf("order %v cannot move from %s to %s", order.ID, order.Status, status)
	}

	order.Status = status
	order.PaymentStatus = payStatus

	event, err := statusEvent(order)
	if err != nil {
		return err
	}

	if err := s.repo.SetPayment(ctx, order.ID, status, payStatus, captureID, event); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// Cancel is the widget's cancel hook: the buyer backed out. Nothing is
// mutated and the cart stays as it was; the pending order's cleanup runs
// out of band.
func (s *Service) Cancel(idempotencyKey string) {
	log.Printf("checkout cancelled by buyer, idempotency_key = %v", idempotencyKey)
}

// Fail is the widget's error hook: initialization or transport failure.
// Logged only; no automatic retry.
func (s *Service) Fail(idempotencyKey string, cause error) {
	log.Printf("payment widget error, idempotency_key = %v: %v", idempotencyKey, cause)
}
