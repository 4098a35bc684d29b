package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "PENDING"
	OrderStatusPaymentPending      OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaid                OrderStatus = "PAID"
	OrderStatusPendingVerification OrderStatus = "PENDING_VERIFICATION"
	OrderStatusConfirmed           OrderStatus = "CONFIRMED"
	OrderStatusShipped             OrderStatus = "SHIPPED"
	OrderStatusDelivered           OrderStatus = "DELIVERED"
	OrderStatusCancelled           OrderStatus = "CANCELLED"
	OrderStatusDeclined            OrderStatus = "DECLINED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusDeclined
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:             {OrderStatusPaymentPending, OrderStatusCancelled},
	OrderStatusPaymentPending:      {OrderStatusPaid, OrderStatusPendingVerification, OrderStatusDeclined, OrderStatusCancelled},
	OrderStatusPaid:                {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusPendingVerification: {OrderStatusPaid, OrderStatusConfirmed, OrderStatusDeclined},
	OrderStatusConfirmed:           {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:             {OrderStatusDelivered},
}

// CanTransitionTo reports whether moving from s to next is a legal step in the
// order lifecycle.
func CanTransitionTo(s, next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "PENDING"
	PaymentStatusCompleted           PaymentStatus = "COMPLETED"
	PaymentStatusPendingVerification PaymentStatus = "PENDING_VERIFICATION"
	PaymentStatusFailed              PaymentStatus = "FAILED"
)

// OrderItem is a cart line frozen at order-creation time, with the unit price
// the server priced it at.
type OrderItem struct {
	Ref       CatalogRef `json:"ref"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unit_price"`
	Subtotal  float64    `json:"subtotal"`
}

// Order is the authoritative record created at checkout. Its totals supersede
// any client-side estimate.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          string          `json:"user_id"`
	ProviderOrderID string          `json:"provider_order_id"`
	Items           []OrderItem     `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	Shipping        float64         `json:"shipping"`
	Tax             float64         `json:"tax"`
	Total           float64         `json:"total"`
	Currency        string          `json:"currency"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Address         ShippingAddress `json:"address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
