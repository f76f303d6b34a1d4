package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/domain/repository"
)

// SettleUseCase drives the post-hold sequence once the escrow network
// reports a settled hold: persist the authoritative status, notify parties,
// spawn a continuation for partial range fills, prompt for a rating, and
// issue the payout.
type SettleUseCase struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	notifier  Notifier
	board     Board
	announcer Announcer
	payer     Payer
	logger    *slog.Logger
}

// NewSettleUseCase constructs SettleUseCase.
func NewSettleUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	notifier Notifier,
	board Board,
	announcer Announcer,
	payer Payer,
	logger *slog.Logger,
) *SettleUseCase {
	return &SettleUseCase{
		orders:    orders,
		users:     users,
		notifier:  notifier,
		board:     board,
		announcer: announcer,
		payer:     payer,
		logger:    logger,
	}
}

// Settle runs the settlement sequence. The status write is the only
// authoritative step: its failure aborts the run and is retried by
// redelivery of the settlement notification. Everything after it is best
// effort and never unwinds the committed status. Re-entry on an order
// already past the status write is a no-op, which keeps the payout
// at-most-once.
func (u *SettleUseCase) Settle(ctx context.Context, order *model.Order) error {
	if order.Status == model.OrderStatusPaidHoldInvoice || order.Status.Terminal() {
		return nil
	}

	order.Status = model.OrderStatusPaidHoldInvoice
	if err := u.orders.Save(ctx, order); err != nil {
		if errors.Is(err, domainErrors.ErrVersionConflict) {
			return u.resolveConflict(ctx, order.ID, err)
		}
		return err
	}

	buyer, seller := u.parties(ctx, order)

	if err := u.notifier.FundsReleased(ctx, order, buyer, seller); err != nil {
		u.logger.Warn("funds released notification failed",
			slog.String("order", order.ID), slog.String("error", err.Error()))
	}

	u.spawnContinuation(ctx, order)

	if err := u.notifier.RatePrompt(ctx, order, buyer, seller); err != nil {
		u.logger.Warn("rate prompt failed",
			slog.String("order", order.ID), slog.String("error", err.Error()))
	}

	if err := u.payer.Payout(ctx, order.BuyerInvoice, order.Amount); err != nil {
		u.logger.Error("payout failed",
			slog.String("order", order.ID),
			slog.String("destination", order.BuyerInvoice),
			slog.String("error", err.Error()))
	}

	return nil
}

// resolveConflict decides the outcome of a lost settlement race: if another
// actor already settled or froze the order the run becomes a no-op,
// otherwise the error propagates so redelivery retries against fresh state.
func (u *SettleUseCase) resolveConflict(ctx context.Context, orderID string, saveErr error) error {
	current, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if current.Status == model.OrderStatusPaidHoldInvoice || current.Status.Terminal() {
		return nil
	}
	if current.IsFrozen {
		u.logger.Info("settlement suppressed by administrative freeze",
			slog.String("order", current.ID), slog.String("action_by", current.ActionBy))
		return nil
	}
	return saveErr
}

func (u *SettleUseCase) spawnContinuation(ctx context.Context, parent *model.Order) {
	child := ContinuationOrder(parent, uuid.NewString(), time.Now())
	if child == nil {
		return
	}

	if err := u.orders.Create(ctx, child); err != nil {
		u.logger.Error("continuation order creation failed",
			slog.String("parent", parent.ID), slog.String("error", err.Error()))
		return
	}

	if err := u.board.Publish(ctx, child); err != nil {
		u.logger.Warn("continuation listing failed",
			slog.String("order", child.ID), slog.String("error", err.Error()))
	}
	if err := u.announcer.Publish(ctx, child); err != nil {
		u.logger.Warn("continuation announcement failed",
			slog.String("order", child.ID), slog.String("error", err.Error()))
	}

	maker, err := u.users.GetByID(ctx, child.CreatorID)
	if err != nil {
		u.logger.Warn("maker lookup failed",
			slog.String("order", child.ID), slog.String("error", err.Error()))
	}
	if err := u.notifier.ContinuationPublished(ctx, parent, child, maker); err != nil {
		u.logger.Warn("continuation notification failed",
			slog.String("order", child.ID), slog.String("error", err.Error()))
	}
}

func (u *SettleUseCase) parties(ctx context.Context, order *model.Order) (buyer, seller *model.User) {
	var err error
	if order.BuyerID != "" {
		if buyer, err = u.users.GetByID(ctx, order.BuyerID); err != nil {
			u.logger.Warn("buyer lookup failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		}
	}
	if order.SellerID != "" {
		if seller, err = u.users.GetByID(ctx, order.SellerID); err != nil {
			u.logger.Warn("seller lookup failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		}
	}
	return buyer, seller
}
