package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	pkgAuth "github.com/peertrade/escrowd/internal/pkg/auth"
	"github.com/peertrade/escrowd/internal/server/http/handlers"
	"github.com/peertrade/escrowd/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.TradeFacade, strategies *pkgAuth.Strategies, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	tradeHandler := handlers.NewTradeHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	queryHandler := handlers.NewQueryHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", queryHandler.Health)
	api.GET("/listings/:fiat", queryHandler.Listings)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(strategies.Party))
	orders.GET("/:id", queryHandler.Order)
	orders.POST("/:id/take", tradeHandler.Take)
	orders.POST("/:id/hold", tradeHandler.AttachHold)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(strategies.Admin))
	admin.POST("/orders/:id/freeze", adminHandler.Freeze)

	return engine
}
