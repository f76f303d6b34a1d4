package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/escrow"
)

// TradeFacade exposes the subset of application functionality required by the manager.
type TradeFacade interface {
	OrdersAwaitingEscrow(ctx context.Context) ([]model.Order, error)
	HandleInvoiceUpdate(ctx context.Context, update escrow.InvoiceUpdate) error
}

// SubscriptionManager keeps the escrow feed attached across restarts.
// On start it rebuilds the watch set from orders whose hold is still
// outstanding, then pumps feed updates into the application.
type SubscriptionManager struct {
	facade     TradeFacade
	stream     escrow.Stream
	retryDelay time.Duration
	logger     *slog.Logger

	watched map[string]struct{}
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewSubscriptionManager constructs the background escrow subscription loop.
func NewSubscriptionManager(facade TradeFacade, stream escrow.Stream, retryDelay time.Duration, logger *slog.Logger) *SubscriptionManager {
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &SubscriptionManager{
		facade:     facade,
		stream:     stream,
		retryDelay: retryDelay,
		logger:     logger,
		watched:    make(map[string]struct{}),
	}
}

// Watch registers a hold hash as in flight.
func (m *SubscriptionManager) Watch(hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watched[hash] = struct{}{}
}

// Unwatch removes a hold hash from the watch set.
func (m *SubscriptionManager) Unwatch(hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watched, hash)
}

// Watching reports whether a hold hash is currently tracked.
func (m *SubscriptionManager) Watching(hash string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.watched[hash]
	return ok
}

// Start resubscribes outstanding holds and launches the feed pump.
func (m *SubscriptionManager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.run(runCtx)
}

// Stop waits for the feed pump to finish.
func (m *SubscriptionManager) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *SubscriptionManager) run(ctx context.Context) {
	defer m.wg.Done()

	m.resubscribe(ctx)

	for {
		err := m.stream.Run(ctx, m.handleUpdate)
		if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		m.logger.Error("escrow feed interrupted", slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.retryDelay):
		}
	}
}

// resubscribe restores the watch set from orders whose hold was attached
// but not yet resolved. The feed itself survives restarts, this only
// rebuilds local accounting.
func (m *SubscriptionManager) resubscribe(ctx context.Context) {
	orders, err := m.facade.OrdersAwaitingEscrow(ctx)
	if err != nil {
		m.logger.Error("resubscribe outstanding holds failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		if order.Hash == nil {
			continue
		}
		m.Watch(*order.Hash)
	}
	m.logger.Info("resubscribed outstanding holds", slog.Int("count", len(orders)))
}

func (m *SubscriptionManager) handleUpdate(ctx context.Context, update escrow.InvoiceUpdate) error {
	if err := m.facade.HandleInvoiceUpdate(ctx, update); err != nil {
		return err
	}
	if update.State == escrow.StateConfirmed {
		m.Unwatch(update.Hash)
	}
	return nil
}
