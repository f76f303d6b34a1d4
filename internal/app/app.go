package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/escrow"
	"github.com/peertrade/escrowd/internal/worker"
)

const feedRetryDelay = 5 * time.Second

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewTradeFacade,
		newHTTPServer,
		newSubscriptionManager,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type managerParams struct {
	fx.In

	Facade *TradeFacade
	Stream escrow.Stream
	Logger *slog.Logger
}

func newSubscriptionManager(p managerParams) *worker.SubscriptionManager {
	return worker.NewSubscriptionManager(p.Facade, p.Stream, feedRetryDelay, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Facade     *TradeFacade
	Manager    *worker.SubscriptionManager
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Facade.BindWatcher(p.Manager)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting escrowd", slog.String("addr", p.Server.Addr))
			p.Manager.Start(p.Ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Manager.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("escrowd stopped")
			return nil
		},
	})
}
