package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order, idempotencyKey string, event []byte) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, user_id, provider_order_id, idempotency_key, items, subtotal, shipping, tax, total, currency, status, payment_status, address, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.ProviderOrderID,
		idempotencyKey,
		itemsJSON,
		order.Subtotal,
		order.Shipping,
		order.Tax,
		order.Total,
		order.Currency,
		order.Status,
		order.PaymentStatus,
		addressJSON)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	if err := insertOutboxEvent(ctx, tx, order.ID.String(), "order.created", event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOrder(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	order, err := r.getOrder(ctx, `WHERE idempotency_key = $1`, key)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrIdempotencyKeyNotFound
	}
	return order, err
}

const orderColumns = `SELECT id, user_id, provider_order_id, items, subtotal, shipping, tax, total, currency, status, payment_status, address, created_at, updated_at FROM orders `

func (r *PostgresRepository) getOrder(ctx context.Context, where string, arg interface{}) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, addressJSON []byte

	err := r.db.QueryRowContext(ctx, orderColumns+where, arg).Scan(
		&order.ID,
		&order.UserID,
		&order.ProviderOrderID,
		&itemsJSON,
		&order.Subtotal,
		&order.Shipping,
		&order.Tax,
		&order.Total,
		&order.Currency,
		&order.Status,
		&order.PaymentStatus,
		&addressJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.Address); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	return &order, nil
}

func (r *PostgresRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderColumns+`WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var result []*domain.Order
	for rows.Next() {
		var order domain.Order
		var itemsJSON, addressJSON []byte
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.ProviderOrderID,
			&itemsJSON,
			&order.Subtotal,
			&order.Shipping,
			&order.Tax,
			&order.Total,
			&order.Currency,
			&order.Status,
			&order.PaymentStatus,
			&addressJSON,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
		if err := json.Unmarshal(addressJSON, &order.Address); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
		result = append(result, &order)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) SetPayment(ctx context.Context, id uuid.UUID, status domain.OrderStatus, payStatus domain.PaymentStatus, captureID string, event []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE orders SET status = $2, payment_status = $3, capture_id = $4, updated_at = NOW() WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, id, status, payStatus, captureID)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	if err := insertOutboxEvent(ctx, tx, id.String(), "order.payment", event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, aggregateID, eventType string, payload []byte) error {
	query := `INSERT INTO order_outbox (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())`
	if _, err := tx.ExecContext(ctx, query, aggregateID, eventType, payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at, processed_at
	          FROM order_outbox WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	query := `UPDATE order_outbox SET processed_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}
