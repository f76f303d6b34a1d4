package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/usecase"
)

// Module wires the kafka notifier as the engine's notification collaborator.
var Module = fx.Options(
	fx.Provide(newNotifier),
	fx.Provide(func(n *KafkaNotifier) usecase.Notifier { return n }),
	fx.Invoke(registerLifecycle),
)

func newNotifier(cfg *config.Config, logger *slog.Logger) *KafkaNotifier {
	return NewKafkaNotifier(cfg.EscrowBrokers, cfg.NotifyTopic, logger)
}

func registerLifecycle(lc fx.Lifecycle, notifier *KafkaNotifier) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return notifier.Close()
		},
	})
}
