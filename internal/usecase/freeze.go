package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/domain/repository"
)

// FreezeUseCase applies the administrative dispute freeze. The freeze is
// advisory state checked by settlement-triggering transitions, not a
// forcible abort of anything already in flight.
type FreezeUseCase struct {
	orders repository.OrderRepository
	logger *slog.Logger
}

// NewFreezeUseCase constructs FreezeUseCase.
func NewFreezeUseCase(orders repository.OrderRepository, logger *slog.Logger) *FreezeUseCase {
	return &FreezeUseCase{orders: orders, logger: logger}
}

// Freeze marks the order frozen on behalf of adminID. Freezing an already
// frozen order is a no-op; terminal orders cannot be frozen.
func (u *FreezeUseCase) Freeze(ctx context.Context, orderID, adminID string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, domainErrors.ErrOrderTerminal
	}
	if order.IsFrozen {
		return order, nil
	}

	order.Status = model.OrderStatusFrozen
	order.IsFrozen = true
	order.ActionBy = adminID

	if err := u.orders.Save(ctx, order); err != nil {
		if errors.Is(err, domainErrors.ErrVersionConflict) {
			current, getErr := u.orders.GetByID(ctx, order.ID)
			if getErr != nil {
				return nil, getErr
			}
			if current.IsFrozen {
				return current, nil
			}
			if current.Status.Terminal() {
				return nil, domainErrors.ErrOrderTerminal
			}
			return nil, err
		}
		return nil, err
	}

	u.logger.Info("order frozen by admin",
		slog.String("order", order.ID), slog.String("action_by", adminID))
	return order, nil
}
