package repository

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByHash(ctx context.Context, hash string) (*model.Order, error)
	// Save persists the fields the engine mutates with an optimistic version
	// check, bumping Version on success. A stale Version yields
	// errors.ErrVersionConflict and leaves the row untouched.
	Save(ctx context.Context, order *model.Order) error
	// ListAwaitingEscrow returns non-terminal orders that already carry an
	// escrow hold, used to resubscribe after a restart.
	ListAwaitingEscrow(ctx context.Context) ([]model.Order, error)
}
