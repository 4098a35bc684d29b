package cart

import (
	"context"
	"errors"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
)

// Common errors returned by cart stores
var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Store defines cart storage operations. Consumers inject an implementation;
// there is no ambient global cart.
type Store interface {
	// GetCart returns the user's cart, or ErrCartNotFound if none exists yet.
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)

	// AddItem appends the line, or sums quantities into the existing line
	// with the same (id, kind) identity.
	AddItem(ctx context.Context, userID string, item domain.CartLine) error

	// AdjustQuantity changes a line's quantity by delta. A line adjusted to
	// zero or below is removed. Missing lines are a no-op.
	AdjustQuantity(ctx context.Context, userID string, ref domain.CatalogRef, delta int) error

	// RemoveItem deletes the matching line. Missing lines are a no-op.
	RemoveItem(ctx context.Context, userID string, ref domain.CatalogRef) error

	// ClearCart drops the whole cart. Called after a completed checkout.
	ClearCart(ctx context.Context, userID string) error
}
