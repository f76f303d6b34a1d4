package test

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// TradeFacadeStub provides controllable behaviour for HTTP layer tests.
type TradeFacadeStub struct {
	TakeFn       func(context.Context, string, string, string) (*model.Order, error)
	AttachHoldFn func(context.Context, string, string) (*model.Order, error)
	FreezeFn     func(context.Context, string, string) (*model.Order, error)
	OrderFn      func(context.Context, string) (*model.Order, error)
	ListingsFn   func(context.Context, string) ([]model.Order, error)
	HealthErr    error
}

// Take delegates to the override or returns a default in-progress order.
func (s TradeFacadeStub) Take(ctx context.Context, orderID, takerID, role string) (*model.Order, error) {
	if s.TakeFn != nil {
		return s.TakeFn(ctx, orderID, takerID, role)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusInProgress}, nil
}

// AttachHold delegates to the override or echoes the hash back.
func (s TradeFacadeStub) AttachHold(ctx context.Context, orderID, hash string) (*model.Order, error) {
	if s.AttachHoldFn != nil {
		return s.AttachHoldFn(ctx, orderID, hash)
	}
	return &model.Order{ID: orderID, Hash: &hash, Status: model.OrderStatusInProgress}, nil
}

// Freeze delegates to the override or returns a frozen order.
func (s TradeFacadeStub) Freeze(ctx context.Context, orderID, adminID string) (*model.Order, error) {
	if s.FreezeFn != nil {
		return s.FreezeFn(ctx, orderID, adminID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusFrozen, IsFrozen: true}, nil
}

// Order delegates to the override or returns a pending order.
func (s TradeFacadeStub) Order(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusPending}, nil
}

// OpenListings delegates to the override or returns a single listing.
func (s TradeFacadeStub) OpenListings(ctx context.Context, fiatCode string) ([]model.Order, error) {
	if s.ListingsFn != nil {
		return s.ListingsFn(ctx, fiatCode)
	}
	return []model.Order{{ID: "1", FiatCode: fiatCode, Status: model.OrderStatusPending}}, nil
}

// HealthCheck returns the configured error.
func (s TradeFacadeStub) HealthCheck(ctx context.Context) error {
	return s.HealthErr
}
