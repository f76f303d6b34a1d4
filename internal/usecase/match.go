package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/domain/repository"
)

// MatchUseCase binds a taking user to an open order.
type MatchUseCase struct {
	orders      repository.OrderRepository
	users       repository.UserRepository
	guard       *CounterpartyGuard
	eligibility EligibilityFunc
	notifier    Notifier
	board       Board
	announcer   Announcer
	logger      *slog.Logger
}

// NewMatchUseCase constructs MatchUseCase.
func NewMatchUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	guard *CounterpartyGuard,
	eligibility EligibilityFunc,
	notifier Notifier,
	board Board,
	announcer Announcer,
	logger *slog.Logger,
) *MatchUseCase {
	if eligibility == nil {
		eligibility = AllowAllTakers
	}
	return &MatchUseCase{
		orders:      orders,
		users:       users,
		guard:       guard,
		eligibility: eligibility,
		notifier:    notifier,
		board:       board,
		announcer:   announcer,
		logger:      logger,
	}
}

// Take binds takerID to the missing role of the order. A retried take by the
// user already bound is a successful no-op; a take racing another user loses
// with ErrOrderTaken. The guard and eligibility checks run before any
// mutation.
func (u *MatchUseCase) Take(ctx context.Context, orderID, takerID string, role TakerRole) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, domainErrors.ErrOrderTerminal
	}
	if order.Taken() {
		if order.TakerID() == takerID {
			return order, nil
		}
		return nil, domainErrors.ErrOrderTaken
	}
	if order.Status != model.OrderStatusPending {
		return nil, domainErrors.ErrOrderNotTakeable
	}

	// The requested role must bind the side the maker left open.
	switch role {
	case RoleSeller:
		if order.Kind != model.OrderKindBuy {
			return nil, domainErrors.ErrInvalidRole
		}
	case RoleBuyer:
		if order.Kind != model.OrderKindSell {
			return nil, domainErrors.ErrInvalidRole
		}
	default:
		return nil, domainErrors.ErrInvalidRole
	}

	if takerID == order.Maker() {
		return nil, domainErrors.ErrSelfTrade
	}

	if err := u.guard.CheckPair(ctx, takerID, order.Maker(), order.CommunityID); err != nil {
		return nil, err
	}

	taker, err := u.users.GetByID(ctx, takerID)
	if err != nil {
		return nil, err
	}
	if err := u.eligibility(ctx, taker, order, role); err != nil {
		return nil, err
	}

	now := time.Now()
	switch role {
	case RoleSeller:
		order.SellerID = takerID
		order.Reason = model.ReasonWaitingPayment
	case RoleBuyer:
		order.BuyerID = takerID
		order.Reason = model.ReasonWaitingBuyerInvoice
	}
	order.TakenAt = &now
	// Reason and the generic marker land in one save so no reader observes a
	// stale pre-take status after Take returns.
	order.Status = model.OrderStatusInProgress

	if err := u.orders.Save(ctx, order); err != nil {
		if errors.Is(err, domainErrors.ErrVersionConflict) {
			current, getErr := u.orders.GetByID(ctx, order.ID)
			if getErr != nil {
				return nil, getErr
			}
			if current.Taken() && current.TakerID() == takerID {
				return current, nil
			}
			return nil, domainErrors.ErrOrderTaken
		}
		return nil, err
	}

	u.afterTake(ctx, order)
	return order, nil
}

// AttachHold records the escrow hold identifier once the invoice was issued.
// An order never carries more than one outstanding hold.
func (u *MatchUseCase) AttachHold(ctx context.Context, orderID, hash string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, domainErrors.ErrOrderTerminal
	}
	if order.Hash != nil {
		if *order.Hash == hash {
			return order, nil
		}
		return nil, domainErrors.ErrHoldOutstanding
	}
	if order.Status != model.OrderStatusInProgress {
		return nil, domainErrors.ErrOrderNotTakeable
	}

	order.Hash = &hash
	if err := u.orders.Save(ctx, order); err != nil {
		if errors.Is(err, domainErrors.ErrVersionConflict) {
			current, getErr := u.orders.GetByID(ctx, order.ID)
			if getErr != nil {
				return nil, getErr
			}
			if current.Hash != nil && *current.Hash == hash {
				return current, nil
			}
			return nil, domainErrors.ErrHoldOutstanding
		}
		return nil, err
	}
	return order, nil
}

// afterTake runs the delegated side effects. Failures here are logged and do
// not unwind the committed take.
func (u *MatchUseCase) afterTake(ctx context.Context, order *model.Order) {
	if err := u.board.Remove(ctx, order); err != nil {
		u.logger.Warn("remove listing failed",
			slog.String("order", order.ID), slog.String("error", err.Error()))
	}

	buyer, seller := u.parties(ctx, order)
	if err := u.notifier.TradeStarted(ctx, order, buyer, seller); err != nil {
		u.logger.Warn("trade started notification failed",
			slog.String("order", order.ID), slog.String("error", err.Error()))
	}

	if err := u.announcer.Publish(ctx, order); err != nil {
		u.logger.Warn("announcement republish failed",
			slog.String("order", order.ID), slog.String("error", err.Error()))
	}
}

func (u *MatchUseCase) parties(ctx context.Context, order *model.Order) (buyer, seller *model.User) {
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
