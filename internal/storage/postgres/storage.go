package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses; it lets tests
// substitute a pgxmock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

var _ repository.Factory = (*Storage)(nil)

type orderRepository struct {
	storage *Storage
}

type userRepository struct {
	storage *Storage
}

type blockRepository struct {
	storage *Storage
}

type communityRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Blocks() repository.BlockRepository {
	return &blockRepository{storage: s}
}

func (s *Storage) Communities() repository.CommunityRepository {
	return &communityRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            total_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
            total_reviews INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            fiat_code TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            amount BIGINT NOT NULL DEFAULT 0,
            fiat_amount BIGINT NOT NULL DEFAULT 0,
            min_amount BIGINT,
            max_amount BIGINT,
            price_margin DOUBLE PRECISION NOT NULL DEFAULT 0,
            creator_id TEXT NOT NULL,
            buyer_id TEXT NOT NULL DEFAULT '',
            seller_id TEXT NOT NULL DEFAULT '',
            buyer_invoice TEXT NOT NULL DEFAULT '',
            hash TEXT UNIQUE,
            status TEXT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            is_frozen BOOLEAN NOT NULL DEFAULT FALSE,
            action_by TEXT NOT NULL DEFAULT '',
            community_id TEXT,
            taken_at TIMESTAMPTZ,
            invoice_held_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            version BIGINT NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS blocks (
            blocker_id TEXT NOT NULL,
            blocked_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (blocker_id, blocked_id)
        )`,
		`CREATE TABLE IF NOT EXISTS communities (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            public BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE TABLE IF NOT EXISTS community_bans (
            community_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            PRIMARY KEY (community_id, user_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, kind, fiat_code, payment_method, amount, fiat_amount,
        min_amount, max_amount, price_margin, creator_id, buyer_id, seller_id,
        buyer_invoice, hash, status, reason, is_frozen, action_by, community_id,
        taken_at, invoice_held_at, created_at, updated_at, version`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Kind, &o.FiatCode, &o.PaymentMethod, &o.Amount, &o.FiatAmount,
		&o.MinAmount, &o.MaxAmount, &o.PriceMargin, &o.CreatorID, &o.BuyerID, &o.SellerID,
		&o.BuyerInvoice, &o.Hash, &o.Status, &o.Reason, &o.IsFrozen, &o.ActionBy, &o.CommunityID,
		&o.TakenAt, &o.InvoiceHeldAt, &o.CreatedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (
            id, kind, fiat_code, payment_method, amount, fiat_amount,
            min_amount, max_amount, price_margin, creator_id, buyer_id, seller_id,
            buyer_invoice, hash, status, reason, is_frozen, action_by, community_id,
            taken_at, invoice_held_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING created_at, updated_at, version`
	err := r.storage.pool.QueryRow(ctx, query,
		order.ID, order.Kind, order.FiatCode, order.PaymentMethod, order.Amount, order.FiatAmount,
		order.MinAmount, order.MaxAmount, order.PriceMargin, order.CreatorID, order.BuyerID, order.SellerID,
		order.BuyerInvoice, order.Hash, order.Status, order.Reason, order.IsFrozen, order.ActionBy, order.CommunityID,
		order.TakenAt, order.InvoiceHeldAt,
	).Scan(&order.CreatedAt, &order.UpdatedAt, &order.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("order %s: %w", order.ID, domainErrors.ErrVersionConflict)
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByHash(ctx context.Context, hash string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE hash=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Save(ctx context.Context, order *model.Order) error {
	const query = `UPDATE orders SET
            amount=$1, fiat_amount=$2, buyer_id=$3, seller_id=$4, buyer_invoice=$5,
            hash=$6, status=$7, reason=$8, is_frozen=$9, action_by=$10,
            taken_at=$11, invoice_held_at=$12, updated_at=NOW(), version=version+1
        WHERE id=$13 AND version=$14`
	tag, err := r.storage.pool.Exec(ctx, query,
		order.Amount, order.FiatAmount, order.BuyerID, order.SellerID, order.BuyerInvoice,
		order.Hash, order.Status, order.Reason, order.IsFrozen, order.ActionBy,
		order.TakenAt, order.InvoiceHeldAt, order.ID, order.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, order.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domainErrors.ErrNotFound
		}
		return domainErrors.ErrVersionConflict
	}
	order.Version++
	return nil
}

func (r *orderRepository) ListAwaitingEscrow(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
        WHERE hash IS NOT NULL AND status NOT IN ($1, $2, $3)`
	rows, err := r.storage.pool.Query(ctx, query,
		model.OrderStatusCompleted, model.OrderStatusCanceled, model.OrderStatusExpired)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- UserRepository implementation ---

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT id, total_rating, total_reviews, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.TotalRating, &u.TotalReviews, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- BlockRepository implementation ---

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM blocks WHERE blocker_id=$1 AND blocked_id=$2)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, blockerID, blockedID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// --- CommunityRepository implementation ---

func (r *communityRepository) GetByID(ctx context.Context, id string) (*model.Community, error) {
	const query = `SELECT id, name, public FROM communities WHERE id=$1`
	var c model.Community
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Public)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *communityRepository) IsBanned(ctx context.Context, userID, communityID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM community_bans WHERE community_id=$1 AND user_id=$2)`
	var banned bool
	if err := r.storage.pool.QueryRow(ctx, query, communityID, userID).Scan(&banned); err != nil {
		return false, err
	}
	return banned, nil
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
