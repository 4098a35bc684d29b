package pricing

import (
	"math"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
)

// Config holds the pricing knobs. The tax rate differs between storefront
// pages in the wild, so it is configuration here with one authoritative
// default used at checkout.
type Config struct {
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShippingFee       float64
	Currency              string
}

func DefaultConfig() Config {
	return Config{
		TaxRate:               0.0825,
		FreeShippingThreshold: 75.00,
		FlatShippingFee:       9.99,
		Currency:              "USD",
	}
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// ComputeTotals prices a list of cart lines. It is a pure function: same
// items and config always produce the same totals. Shipping is free strictly
// above the threshold; a subtotal exactly at the threshold pays the flat fee.
//
// The result is an estimate when rendered cart-side. The checkout service
// runs the same computation over its own copy of the lines and only that
// result is charged.
func ComputeTotals(items []domain.CartLine, cfg Config) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += roundCents(item.Price * float64(item.Quantity))
	}
	subtotal = roundCents(subtotal)

	shipping := cfg.FlatShippingFee
	if subtotal > cfg.FreeShippingThreshold {
		shipping = 0
	}

	tax := roundCents(subtotal * cfg.TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    roundCents(subtotal + shipping + tax),
		Currency: cfg.Currency,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
