package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/domain/repository"
	"github.com/peertrade/escrowd/internal/usecase"
)

// Listener translates escrow hold notifications into order transitions.
// Every transition is conditioned on the order status read immediately
// before the write, and tolerates duplicate delivery; that stands in for a
// lock across the chat-triggered operations racing it.
type Listener struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	notifier usecase.Notifier
	settler  *usecase.SettleUseCase
	logger   *slog.Logger
}

// NewListener constructs Listener.
func NewListener(
	orders repository.OrderRepository,
	users repository.UserRepository,
	notifier usecase.Notifier,
	settler *usecase.SettleUseCase,
	logger *slog.Logger,
) *Listener {
	return &Listener{
		orders:   orders,
		users:    users,
		notifier: notifier,
		settler:  settler,
		logger:   logger,
	}
}

// HandleUpdate dispatches one invoice update against the transition table.
func (l *Listener) HandleUpdate(ctx context.Context, update InvoiceUpdate) error {
	switch update.State {
	case StateHeld:
		return l.handleHeld(ctx, update)
	case StateConfirmed:
		return l.handleConfirmed(ctx, update)
	default:
		l.logger.Warn("unknown escrow state",
			slog.String("hash", update.Hash), slog.String("state", string(update.State)))
		return nil
	}
}

func (l *Listener) handleHeld(ctx context.Context, update InvoiceUpdate) error {
	order, err := l.resolve(ctx, update)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	if order.InvoiceHeldAt != nil {
		// Duplicate delivery: no re-stamp, no re-notification.
		return nil
	}
	if order.Status == model.OrderStatusPaidHoldInvoice {
		// Settlement already went through; a late HELD must not re-open it.
		l.logger.Warn("hold notification after settlement",
			slog.String("order", order.ID), slog.String("hash", update.Hash))
		return nil
	}

	now := time.Now()
	order.InvoiceHeldAt = &now
	if !order.IsFrozen {
		// A frozen order keeps its status; the stamp alone records the hold.
		order.Status = model.OrderStatusActive
	}
	if order.Kind == model.OrderKindBuy {
		// Funds are locked, the trade now waits on the buyer's payout invoice.
		order.Reason = model.ReasonWaitingBuyerInvoice
	}

	if err := l.orders.Save(ctx, order); err != nil {
		if errors.Is(err, domainErrors.ErrVersionConflict) {
			current, getErr := l.orders.GetByID(ctx, order.ID)
			if getErr != nil {
				return getErr
			}
			if current.InvoiceHeldAt != nil {
				return nil
			}
			return err
		}
		return err
	}

	l.logger.Info("escrow hold locked",
		slog.String("order", order.ID), slog.String("hash", update.Hash))
	l.notifyHeld(ctx, order)
	return nil
}

func (l *Listener) handleConfirmed(ctx context.Context, update InvoiceUpdate) error {
	order, err := l.resolve(ctx, update)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	if order.IsFrozen {
		// Administrative freeze strictly overrides settlement. Audit record,
		// not an error: the notification is consumed, never retried.
		l.logger.Info("settlement suppressed by administrative freeze",
			slog.String("order", order.ID),
			slog.String("hash", update.Hash),
			slog.String("action_by", order.ActionBy))
		return nil
	}

	// A CONFIRMED with no prior hold stamp is unusual but valid: settle anyway.
	if order.InvoiceHeldAt == nil {
		l.logger.Warn("settlement without observed hold",
			slog.String("order", order.ID), slog.String("hash", update.Hash))
	}

	l.logger.Info("escrow hold settled",
		slog.String("order", order.ID), slog.String("hash", update.Hash))
	return l.settler.Settle(ctx, order)
}

// resolve looks the order up by the hold hash. A missing order for a known
// hash is a consistency fault surfaced as an error, never a silent drop. A
// terminal order consumes the notification with an anomaly log.
func (l *Listener) resolve(ctx context.Context, update InvoiceUpdate) (*model.Order, error) {
	order, err := l.orders.GetByHash(ctx, update.Hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			l.logger.Error("no order for escrow hold",
				slog.String("hash", update.Hash), slog.String("state", string(update.State)))
			return nil, fmt.Errorf("escrow hold %s: %w", update.Hash, err)
		}
		return nil, err
	}

	if order.Status.Terminal() {
		l.logger.Warn("escrow notification for terminal order",
			slog.String("order", order.ID),
			slog.String("status", string(order.Status)),
			slog.String("state", string(update.State)))
		return nil, nil
	}

	return order, nil
}

func (l *Listener) notifyHeld(ctx context.Context, order *model.Order) {
	var buyer, seller *model.User
	var err error
	if order.BuyerID != "" {
		if buyer, err = l.users.GetByID(ctx, order.BuyerID); err != nil {
			l.logger.Warn("buyer lookup failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		}
	}
	if order.SellerID != "" {
		if seller, err = l.users.GetByID(ctx, order.SellerID); err != nil {
			l.logger.Warn("seller lookup failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		}
	}

	// Buy-direction orders show the maker's reputation to the counterparty
	// deciding whether to hand over a payout destination.
	makerReputation := ""
	if order.Kind == model.OrderKindBuy {
		maker := buyer
		if order.Maker() == order.SellerID {
			maker = seller
		}
		if maker != nil {
			makerReputation = maker.ReputationSummary()
		}
	}

	if err := l.notifier.EscrowHeld(ctx, order, buyer, seller, makerReputation); err != nil {
		l.logger.Warn("escrow held notification failed",
			slog.String("order", order.ID), slog.String("error", err.Error()))
	}
}
