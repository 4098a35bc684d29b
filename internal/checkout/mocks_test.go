package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/payment"
	"github.com/google/uuid"
)

// mockCarts implements CartService for testing
type mockCarts struct {
	mu         sync.Mutex
	cart       *domain.Cart
	getErr     error
	clearCalls int
}

func (m *mockCarts) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cart == nil {
		return &domain.Cart{UserID: userID}, nil
	}
	return m.cart, nil
}

func (m *mockCarts) ClearCart(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	return nil
}

func (m *mockCarts) ClearCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCalls
}

// mockRepo implements orders.Repository for testing
type mockRepo struct {
	mu        sync.Mutex
	byKey     map[string]*domain.Order
	byID      map[uuid.UUID]*domain.Order
	createErr error

	lastStatus    domain.OrderStatus
	lastPayStatus domain.PaymentStatus
	lastCaptureID string
	setPayCalls   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byKey: make(map[string]*domain.Order),
		byID:  make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockRepo) Close() error                            { return nil }
func (m *mockRepo) RunMigrations(*orders.Credentials) error { return nil }

func (m *mockRepo) CreateOrder(_ context.Context, order *domain.Order, idempotencyKey string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byKey[idempotencyKey]; exists {
		return orders.ErrDuplicateOrder
	}
	m.byKey[idempotencyKey] = order
	m.byID[order.ID] = order
	return nil
}

func (m *mockRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.byID[id]; ok {
		return order, nil
	}
	return nil, orders.ErrOrderNotFound
}

func (m *mockRepo) GetOrderByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.byKey[key]; ok {
		return order, nil
	}
	return nil, orders.ErrIdempotencyKeyNotFound
}

func (m *mockRepo) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return nil, nil
}

func (m *mockRepo) SetPayment(_ context.Context, id uuid.UUID, status domain.OrderStatus, payStatus domain.PaymentStatus, captureID string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok {
		return orders.ErrOrderNotFound
	}
	order.Status = status
	order.PaymentStatus = payStatus
	m.lastStatus = status
	m.lastPayStatus = payStatus
	m.lastCaptureID = captureID
	m.setPayCalls++
	return nil
}

func (m *mockRepo) GetUnprocessedEvents(context.Context, int) ([]*orders.OutboxEvent, error) {
	return nil, nil
}

func (m *mockRepo) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}

// mockProvider implements payment.Provider for testing
type mockProvider struct {
	mu            sync.Mutex
	createCalls   int
	captureCalls  int
	createDelay   time.Duration
	createErr     error
	captureErr    error
	captureStatus payment.CaptureStatus
	lastAmount    float64
}

func (m *mockProvider) CreateOrder(_ context.Context, req payment.CreateOrderRequest) (*payment.ProviderOrder, error) {
	m.mu.Lock()
	m.createCalls++
	m.lastAmount = req.Amount
	delay := m.createDelay
	err := m.createErr
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &payment.ProviderOrder{ID: "PP-" + req.ReferenceID[:8], Status: "CREATED"}, nil
}

func (m *mockProvider) CaptureOrder(context.Context, string) (*payment.CaptureResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captureCalls++
	if m.captureErr != nil {
		return nil, m.captureErr
	}
	status := m.captureStatus
	if status == "" {
		status = payment.CaptureStatusCompleted
	}
	return &payment.CaptureResult{CaptureID: "CAP-1", Status: status}, nil
}

func (m *mockProvider) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

func (m *mockProvider) CaptureCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captureCalls
}
