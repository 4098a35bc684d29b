package status

import (
	"sync"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
)

// Update is one order status change pushed to subscribers.
type Update struct {
	OrderID       string               `json:"order_id"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// Hub routes status updates to per-order subscribers. Updates for an order id
// nobody watches are dropped.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]func(Update)
	nextID int64
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int64]func(Update)),
	}
}

// Subscribe registers fn for updates about one order id and returns the
// teardown function. The teardown is idempotent, and after it returns fn is
// never invoked again. Callers must invoke it on every exit path.
func (h *Hub) Subscribe(orderID string, fn func(Update)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[int64]func(Update))
	}
	h.subs[orderID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[orderID], id)
			if len(h.subs[orderID]) == 0 {
				delete(h.subs, orderID)
			}
		})
	}
}

// Publish delivers the update to every subscriber of its order id.
func (h *Hub) Publish(u Update) {
	h.mu.RLock()
	fns := make([]func(Update), 0, len(h.subs[u.OrderID]))
	for _, fn := range h.subs[u.OrderID] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(u)
	}
}

// Subscribers reports how many callbacks watch the order id.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[orderID])
}
