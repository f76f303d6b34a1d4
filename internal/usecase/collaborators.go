package usecase

import (
	"context"

	"github.com/peertrade/escrowd/internal/domain/model"
)

// Notifier delivers semantic outcomes to trading parties. Implementations
// own rendering and transport; the engine only names the intent.
type Notifier interface {
	TradeStarted(ctx context.Context, order *model.Order, buyer, seller *model.User) error
	EscrowHeld(ctx context.Context, order *model.Order, buyer, seller *model.User, makerReputation string) error
	FundsReleased(ctx context.Context, order *model.Order, buyer, seller *model.User) error
	RatePrompt(ctx context.Context, order *model.Order, rater, rated *model.User) error
	ContinuationPublished(ctx context.Context, parent, child *model.Order, maker *model.User) error
}

// Announcer republishes the public replaceable announcement of an order.
type Announcer interface {
	Publish(ctx context.Context, order *model.Order) error
}

// Board maintains the public listing of open offers.
type Board interface {
	Publish(ctx context.Context, order *model.Order) error
	Remove(ctx context.Context, order *model.Order) error
}

// Payer issues the payout request to the receiving party's destination.
type Payer interface {
	Payout(ctx context.Context, destination string, amount int64) error
}
