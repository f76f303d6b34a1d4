package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// Keys of the public listing board.
const (
	keyOrder   = "listing:order:%s"
	keyByFiat  = "listing:fiat:%s"
	defaultTTL = 48 * time.Hour
)

// Board maintains the public listing of open offers.
type Board interface {
	Publish(ctx context.Context, order *model.Order) error
	Remove(ctx context.Context, order *model.Order) error
	Open(ctx context.Context, fiatCode string) ([]model.Order, error)
}

// Entry is the listed snapshot of an open offer.
type Entry struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	FiatCode      string  `json:"fiat_code"`
	FiatAmount    int64   `json:"fiat_amount"`
	MinAmount     *int64  `json:"min_amount,omitempty"`
	MaxAmount     *int64  `json:"max_amount,omitempty"`
	PaymentMethod string  `json:"payment_method"`
	PriceMargin   float64 `json:"price_margin"`
}

// RedisBoard is the redis-backed listing board.
type RedisBoard struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisBoard constructs RedisBoard against the given address.
func NewRedisBoard(addr string, logger *slog.Logger) *RedisBoard {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisBoard{rdb: rdb, ttl: defaultTTL, logger: logger}
}

// Close releases the redis connection.
func (b *RedisBoard) Close() error {
	return b.rdb.Close()
}

// Publish lists an open offer on the board.
func (b *RedisBoard) Publish(ctx context.Context, order *model.Order) error {
	entry := Entry{
		ID:            order.ID,
		Kind:          string(order.Kind),
		FiatCode:      order.FiatCode,
		FiatAmount:    order.FiatAmount,
		MinAmount:     order.MinAmount,
		MaxAmount:     order.MaxAmount,
		PaymentMethod: order.PaymentMethod,
		PriceMargin:   order.PriceMargin,
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	pipe := b.rdb.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(keyOrder, order.ID), value, b.ttl)
	pipe.SAdd(ctx, fmt.Sprintf(keyByFiat, order.FiatCode), order.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish listing %s: %w", order.ID, err)
	}
	return nil
}

// Remove delists the order, e.g. when it gets taken.
func (b *RedisBoard) Remove(ctx context.Context, order *model.Order) error {
	pipe := b.rdb.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(keyOrder, order.ID))
	pipe.SRem(ctx, fmt.Sprintf(keyByFiat, order.FiatCode), order.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove listing %s: %w", order.ID, err)
	}
	return nil
}

// Open returns the currently listed offers for a fiat currency. Entries
// whose snapshot expired are skipped.
func (b *RedisBoard) Open(ctx context.Context, fiatCode string) ([]model.Order, error) {
	ids, err := b.rdb.SMembers(ctx, fmt.Sprintf(keyByFiat, fiatCode)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s offers: %w", fiatCode, err)
	}

	var orders []model.Order
	for _, id := range ids {
		raw, err := b.rdb.Get(ctx, fmt.Sprintf(keyOrder, id)).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			b.logger.Warn("malformed listing entry", slog.String("order", id))
			continue
		}
		orders = append(orders, model.Order{
			ID:            entry.ID,
			Kind:          model.OrderKind(entry.Kind),
			FiatCode:      entry.FiatCode,
			FiatAmount:    entry.FiatAmount,
			MinAmount:     entry.MinAmount,
			MaxAmount:     entry.MaxAmount,
			PaymentMethod: entry.PaymentMethod,
			PriceMargin:   entry.PriceMargin,
			Status:        model.OrderStatusPending,
		})
	}
	return orders, nil
}
