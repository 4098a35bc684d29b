package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/checkout"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
)

// CheckoutService is what the checkout endpoints need from the orchestrator.
type CheckoutService interface {
	CreateOrder(ctx context.Context, userID string, address domain.ShippingAddress, idempotencyKey string) (*checkout.CreateOrderResult, error)
	Capture(ctx context.Context, providerOrderID, localOrderID, idempotencyKey string) (*checkout.CaptureOutcome, error)
	Cancel(idempotencyKey string)
	Fail(idempotencyKey string, cause error)
}

type CheckoutHandler struct {
	service CheckoutService
	timeout time.Duration
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type CreateOrderRequestDTO struct {
	IdempotencyKey string                 `json:"idempotency_key"`
	Address        domain.ShippingAddress `json:"address"`
}

type CreateOrderResponseDTO struct {
	OrderID         string  `json:"order_id"`
	ProviderOrderID string  `json:"provider_order_id"`
	Subtotal        float64 `json:"subtotal"`
	Shipping        float64 `json:"shipping"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`
	Currency        string  `json:"currency"`
}

// POST /api/v1/checkout/orders
func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "missing_idempotency_key", "idempotency_key is required")
		return
	}

	result, err := h.service.CreateOrder(ctx, userID, req.Address, req.IdempotencyKey)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateOrderResponseDTO{
		OrderID:         result.OrderID,
		ProviderOrderID: result.ProviderOrderID,
		Subtotal:        result.Totals.Subtotal,
		Shipping:        result.Totals.Shipping,
		Tax:             result.Totals.Tax,
		Total:           result.Totals.Total,
		Currency:        result.Totals.Currency,
	})
}

type CaptureRequestDTO struct {
	ProviderOrderID string `json:"provider_order_id"`
	OrderID         string `json:"order_id"`
	IdempotencyKey  string `json:"idempotency_key"`
}

type CaptureResponseDTO struct {
	OrderID       string `json:"order_id"`
	Outcome       string `json:"outcome"`
	PaymentStatus string `json:"payment_status"`
}

// POST /api/v1/checkout/capture
func (h *CheckoutHandler) Capture(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req CaptureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome, err := h.service.Capture(ctx, req.ProviderOrderID, req.OrderID, req.IdempotencyKey)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CaptureResponseDTO{
		OrderID:       outcome.OrderID,
		Outcome:       string(outcome.Outcome),
		PaymentStatus: string(outcome.PaymentStatus),
	})
}

type CancelRequestDTO struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// POST /api/v1/checkout/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.service.Cancel(req.IdempotencyKey)
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// POST /api/v1/checkout/error
func (h *CheckoutHandler) WidgetError(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IdempotencyKey string `json:"idempotency_key"`
		Message        string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.service.Fail(req.IdempotencyKey, errors.New(req.Message))
	respondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrIncompleteAddress):
		respondError(w, http.StatusBadRequest, "incomplete_address", err.Error())
	case errors.Is(err, checkout.ErrMissingOrderIDs):
		respondError(w, http.StatusBadRequest, "missing_order_ids", "create an order before capturing")
	case errors.Is(err, checkout.ErrOrderMismatch):
		respondError(w, http.StatusConflict, "order_mismatch", "order ids do not belong together")
	case errors.Is(err, checkout.ErrNotCapturable):
		respondError(w, http.StatusConflict, "not_capturable", "order is not awaiting capture")
	case errors.Is(err, checkout.ErrPaymentDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", "payment was declined")
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
	}
}
