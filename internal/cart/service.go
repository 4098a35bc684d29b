package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/cache"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/pricing"
	"golang.org/x/sync/singleflight"
)

// Service fronts a Store with a cache. Reads collapse through singleflight,
// writes invalidate.
type Service struct {
	store   Store
	cache   cache.CartCache
	pricing pricing.Config
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(store Store, c cache.CartCache, cfg pricing.Config) *Service {
	return &Service{
		store:   store,
		cache:   c,
		pricing: cfg,
	}
}

// GetCart returns the user's cart. A user without a cart gets an empty one,
// never an error.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		c, errGet := s.store.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			errSet := s.cache.Set(context.Background(), userID, c)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return c, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Estimate prices the cart for display. The checkout service recomputes
// totals itself; this value is never charged.
func (s *Service) Estimate(c *domain.Cart) pricing.Totals {
	return pricing.ComputeTotals(c.Items, s.pricing)
}

func (s *Service) AddItem(ctx context.Context, userID string, item domain.CartLine) error {
	if errAdd := s.store.AddItem(ctx, userID, item); errAdd != nil {
		log.Printf("store add item error: %v", errAdd)
		return errAdd
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) AdjustQuantity(ctx context.Context, userID string, ref domain.CatalogRef, delta int) error {
	if errAdjust := s.store.AdjustQuantity(ctx, userID, ref, delta); errAdjust != nil {
		log.Printf("store adjust quantity error: %v", errAdjust)
		return errAdjust
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, ref domain.CatalogRef) error {
	if errRemove := s.store.RemoveItem(ctx, userID, ref); errRemove != nil {
		log.Printf("store remove item error: %v", errRemove)
		return errRemove
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if errClear := s.store.ClearCart(ctx, userID); errClear != nil {
		log.Printf("store clear cart error: %v", errClear)
		return errClear
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if errInvalidate := s.cache.Delete(ctx, userID); errInvalidate != nil {
		log.Printf("cache invalidate error: %v", errInvalidate)
	}
}
