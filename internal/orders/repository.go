package orders

import (
	"context"
	"errors"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/google/uuid"
)

// Common errors returned by the repository
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrDuplicateOrder         = errors.New("order already exists for this idempotency key")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a status change waiting to be published to the broker.
type OutboxEvent struct {
	ID          int64
	AggregateID string // order id, used as the message key for ordering
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type Repository interface {
	Close() error
	RunMigrations(cred *Credentials) error

	// CreateOrder persists the order and its creation event in one
	// transaction. ErrDuplicateOrder when the idempotency key was used.
	CreateOrder(ctx context.Context, order *domain.Order, idempotencyKey string, event []byte) error

	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// GetOrderByIdempotencyKey returns the order a previous checkout attempt
	// created with this key, or ErrIdempotencyKeyNotFound.
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)

	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)

	// SetPayment records the capture outcome and queues a status event, in
	// one transaction.
	SetPayment(ctx context.Context, id uuid.UUID, status domain.OrderStatus, payStatus domain.PaymentStatus, captureID string, event []byte) error

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
