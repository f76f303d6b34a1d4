package di

import (
	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/adapter/escrownode"
	"github.com/peertrade/escrowd/internal/announce"
	"github.com/peertrade/escrowd/internal/app"
	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/domain/repository"
	"github.com/peertrade/escrowd/internal/escrow"
	"github.com/peertrade/escrowd/internal/listing"
	"github.com/peertrade/escrowd/internal/logger"
	"github.com/peertrade/escrowd/internal/notify"
	"github.com/peertrade/escrowd/internal/pkg/auth"
	"github.com/peertrade/escrowd/internal/server/http/handlers"
	"github.com/peertrade/escrowd/internal/server/http/router"
	"github.com/peertrade/escrowd/internal/storage/postgres"
	"github.com/peertrade/escrowd/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		listing.Module,
		notify.Module,
		announce.Module,
		escrownode.Module,
		usecase.Module,
		escrow.Module,
		fx.Provide(
			func(f *app.TradeFacade) handlers.TradeFacade { return f },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(r repository.OrderRepository) app.OrderReader { return r },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
