package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"guestpost-checkout/internal/checkout"
)

// ORDER JOURNAL

var ErrOrderNotFound = errors.New("order not found")

type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type Order struct {
	ID            int64      `db:"id"`
	OrderNumber   string     `db:"order_number"`
	PaymentUUID   string     `db:"payment_uuid"`
	ContentOption string     `db:"content_option"`
	Email         string     `db:"email"`
	Total         string     `db:"total"`
	Currency      string     `db:"currency"`
	Network       string     `db:"network"`
	Products      []string   `db:"-"`
	Paid          bool       `db:"paid"`
	PaidAt        *time.Time `db:"paid_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

func NewPostgresStorage(ctx context.Context, cfg Config, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

func (s *PostgresStorage) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// DB exposes the raw connection for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

// RecordOrder journals a placed order. Duplicate order numbers are upserted
// so a retried submission never fails the checkout path.
func (s *PostgresStorage) RecordOrder(ctx context.Context, rec checkout.OrderRecord) error {
	const query = `
        INSERT INTO orders (
            order_number, payment_uuid, content_option, email,
            total, currency, network, products, paid, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, NOW())
        ON CONFLICT (order_number) DO UPDATE
        SET payment_uuid = EXCLUDED.payment_uuid
    `

	_, err := s.db.ExecContext(ctx, query,
		rec.OrderNumber,
		rec.PaymentUUID,
		rec.ContentOption,
		rec.Email,
		rec.Total.StringFixed(2),
		rec.Currency,
		rec.Network,
		pq.Array(rec.Products),
	)
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

// MarkPaid flags an order as confirmed by the payment provider.
func (s *PostgresStorage) MarkPaid(ctx context.Context, orderNumber string) error {
	const query = `
        UPDATE orders
        SET paid = TRUE, paid_at = NOW()
        WHERE order_number = $1
    `

	res, err := s.db.ExecContext(ctx, query, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("order %s: %w", orderNumber, ErrOrderNotFound)
	}
	return nil
}

// GetOrder loads one journaled order by its marketplace order number.
func (s *PostgresStorage) GetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	const query = `
        SELECT id, order_number, payment_uuid, content_option, email,
               total, currency, network, paid, paid_at, created_at
        FROM orders
        WHERE order_number = $1
    `

	var order Order
	if err := s.db.GetContext(ctx, &order, query, orderNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderNumber, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	const productsQuery = `SELECT products FROM orders WHERE order_number = $1`
	if err := s.db.QueryRowContext(ctx, productsQuery, orderNumber).Scan(pq.Array(&order.Products)); err != nil {
		return nil, fmt.Errorf("failed to get order products: %w", err)
	}
	return &order, nil
}
