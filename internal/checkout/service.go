package checkout

import (
	"context"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/payment"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/pricing"
	"golang.org/x/sync/singleflight"
)

// CartService is the slice of the cart layer checkout needs.
// Consumers define this interface, not the cart implementation.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// Service orchestrates the two halves of a checkout attempt: creating the
// authoritative order (with server-side pricing) and capturing the payment
// once the buyer approves.
type Service struct {
	carts    CartService
	repo     orders.Repository
	provider payment.Provider
	pricing  pricing.Config

	sfg singleflight.Group // collapses duplicate create-order triggers
}

func NewService(carts CartService, repo orders.Repository, provider payment.Provider, cfg pricing.Config) *Service {
	return &Service{
		carts:    carts,
		repo:     repo,
		provider: provider,
		pricing:  cfg,
	}
}
