package app

import (
	"context"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/escrow"
	"github.com/peertrade/escrowd/internal/listing"
	pkgAuth "github.com/peertrade/escrowd/internal/pkg/auth"
	"github.com/peertrade/escrowd/internal/usecase"
)

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HoldWatcher tracks escrow hold hashes with an open subscription.
type HoldWatcher interface {
	Watch(hash string)
}

// OrderReader is the read surface the facade needs beyond use cases.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListAwaitingEscrow(ctx context.Context) ([]model.Order, error)
}

// TradeFacade aggregates the trade engine operations behind one surface for
// the HTTP layer and the subscription manager.
type TradeFacade struct {
	match      *usecase.MatchUseCase
	freeze     *usecase.FreezeUseCase
	listener   *escrow.Listener
	orders     OrderReader
	board      listing.Board
	health     HealthChecker
	strategies *pkgAuth.Strategies

	watcher HoldWatcher
}

// NewTradeFacade constructs TradeFacade.
func NewTradeFacade(
	match *usecase.MatchUseCase,
	freeze *usecase.FreezeUseCase,
	listener *escrow.Listener,
	orders OrderReader,
	board listing.Board,
	health HealthChecker,
	strategies *pkgAuth.Strategies,
) *TradeFacade {
	return &TradeFacade{
		match:      match,
		freeze:     freeze,
		listener:   listener,
		orders:     orders,
		board:      board,
		health:     health,
		strategies: strategies,
	}
}

// BindWatcher attaches the subscription manager once the container built it.
func (f *TradeFacade) BindWatcher(watcher HoldWatcher) {
	f.watcher = watcher
}

// Take matches a taker against a published order.
func (f *TradeFacade) Take(ctx context.Context, orderID, takerID, role string) (*model.Order, error) {
	takerRole, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	return f.match.Take(ctx, orderID, takerID, takerRole)
}

// AttachHold records the escrow hold hash and registers the subscription.
func (f *TradeFacade) AttachHold(ctx context.Context, orderID, hash string) (*model.Order, error) {
	order, err := f.match.AttachHold(ctx, orderID, hash)
	if err != nil {
		return nil, err
	}
	if f.watcher != nil {
		f.watcher.Watch(hash)
	}
	return order, nil
}

// Freeze suspends an order pending dispute resolution.
func (f *TradeFacade) Freeze(ctx context.Context, orderID, adminID string) (*model.Order, error) {
	return f.freeze.Freeze(ctx, orderID, adminID)
}

// Order returns one order by id.
func (f *TradeFacade) Order(ctx context.Context, id string) (*model.Order, error) {
	return f.orders.GetByID(ctx, id)
}

// OpenListings returns open offers for a fiat currency from the public board.
func (f *TradeFacade) OpenListings(ctx context.Context, fiatCode string) ([]model.Order, error) {
	return f.board.Open(ctx, fiatCode)
}

// OrdersAwaitingEscrow lists orders whose hold is attached but unresolved.
func (f *TradeFacade) OrdersAwaitingEscrow(ctx context.Context) ([]model.Order, error) {
	return f.orders.ListAwaitingEscrow(ctx)
}

// HandleInvoiceUpdate feeds one escrow notification into the listener.
func (f *TradeFacade) HandleInvoiceUpdate(ctx context.Context, update escrow.InvoiceUpdate) error {
	return f.listener.HandleUpdate(ctx, update)
}

// ParseToken verifies a party token and returns its subject.
func (f *TradeFacade) ParseToken(token string) (string, error) {
	return f.strategies.Party.ParseToken(token)
}

// ParseAdminToken verifies an admin token and returns its subject.
func (f *TradeFacade) ParseAdminToken(token string) (string, error) {
	return f.strategies.Admin.ParseToken(token)
}

// HealthCheck pings backing storage.
func (f *TradeFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func parseRole(role string) (usecase.TakerRole, error) {
	switch usecase.TakerRole(role) {
	case usecase.RoleBuyer:
		return usecase.RoleBuyer, nil
	case usecase.RoleSeller:
		return usecase.RoleSeller, nil
	}
	return "", domainErrors.ErrInvalidRole
}
