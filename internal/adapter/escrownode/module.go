package escrownode

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/escrow"
	"github.com/peertrade/escrowd/internal/usecase"
)

// Module exposes escrow node adapters to fx graph.
var Module = fx.Options(
	fx.Provide(newFeed),
	fx.Provide(func(f *KafkaFeed) escrow.Stream { return f }),
	fx.Provide(newPayer),
	fx.Invoke(registerLifecycle),
)

type adapterParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newFeed(p adapterParams) *KafkaFeed {
	return NewKafkaFeed(p.Config.EscrowBrokers, p.Config.EscrowTopic, p.Config.EscrowGroup, p.Logger)
}

func newPayer(p adapterParams) (usecase.Payer, error) {
	return NewPayoutClient(p.Config.PayoutNodeAddress, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, feed *KafkaFeed) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return feed.Close()
		},
	})
}
