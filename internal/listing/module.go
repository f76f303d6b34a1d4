package listing

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/usecase"
)

// Module wires the redis listing board.
var Module = fx.Options(
	fx.Provide(newBoard),
	fx.Provide(func(b *RedisBoard) Board { return b }),
	fx.Provide(func(b *RedisBoard) usecase.Board { return b }),
	fx.Invoke(registerLifecycle),
)

func newBoard(cfg *config.Config, logger *slog.Logger) *RedisBoard {
	return NewRedisBoard(cfg.RedisAddress, logger)
}

func registerLifecycle(lc fx.Lifecycle, board *RedisBoard) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return board.Close()
		},
	})
}
