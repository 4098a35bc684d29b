package cart

import (
	"context"
	"sync"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Carts live for the
// lifetime of the process, one per user id.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewMemoryStore creates a new in-memory cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]*domain.Cart),
	}
}

func (s *MemoryStore) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, exists := s.carts[userID]
	if !exists {
		return nil, ErrCartNotFound
	}

	// Copy so callers cannot mutate stored state
	out := *cart
	out.Items = make([]domain.CartLine, len(cart.Items))
	copy(out.Items, cart.Items)
	return &out, nil
}

func (s *MemoryStore) AddItem(_ context.Context, userID string, item domain.CartLine) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cart, exists := s.carts[userID]
	if !exists {
		cart = &domain.Cart{
			UserID:    userID,
			CreatedAt: now,
		}
		s.carts[userID] = cart
	}

	if existing := cart.Find(item.Ref); existing != nil {
		existing.Quantity += item.Quantity
	} else {
		item.AddedAt = now
		cart.Items = append(cart.Items, item)
	}
	cart.UpdatedAt = now
	return nil
}

func (s *MemoryStore) AdjustQuantity(_ context.Context, userID string, ref domain.CatalogRef, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.carts[userID]
	if !exists {
		return nil
	}

	line := cart.Find(ref)
	if line == nil {
		return nil
	}

	line.Quantity += delta
	if line.Quantity < 1 {
		removeLine(cart, ref)
	}
	cart.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, userID string, ref domain.CatalogRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.carts[userID]
	if !exists {
		return nil
	}

	removeLine(cart, ref)
	cart.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ClearCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}

func removeLine(cart *domain.Cart, ref domain.CatalogRef) {
	for i := range cart.Items {
		if cart.Items[i].Ref == ref {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return
		}
	}
}
