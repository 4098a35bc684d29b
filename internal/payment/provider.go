package payment

import (
	"context"
	"errors"
)

// Common errors returned by payment providers
var (
	ErrOrderNotFound = errors.New("provider order not found")
	ErrUnavailable   = errors.New("payment provider unavailable")
)

type CaptureStatus string

const (
	CaptureStatusCompleted CaptureStatus = "COMPLETED"
	CaptureStatusPending   CaptureStatus = "PENDING"
	CaptureStatusDeclined  CaptureStatus = "DECLINED"
)

type CreateOrderRequest struct {
	ReferenceID string // local order id, echoed back by the provider
	Amount      float64
	Currency    string
}

type ProviderOrder struct {
	ID     string
	Status string
}

type CaptureResult struct {
	CaptureID string
	Status    CaptureStatus
}

// Provider is the payment gateway seen by the checkout service: create an
// order for an amount, then capture it once the buyer approves.
type Provider interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error)
}
