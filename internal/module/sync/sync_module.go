package sync

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/yearn/ySync/internal/application"
	"github.com/yearn/ySync/internal/module/sync/controller"
	"github.com/yearn/ySync/internal/module/sync/middleware"
	"github.com/yearn/ySync/internal/module/sync/repository"
	"github.com/yearn/ySync/internal/module/sync/service"
)

// struct of SyncRouter
type SyncRouter struct {
	App                *application.Application
	Controller         *controller.Controller
	RateLimiterService *service.RateLimiterService
	Logger             zerolog.Logger
}

// register bulky of sync module
var NewSyncModule = fx.Options(
	// register repository of sync module
	fx.Provide(repository.NewRefreshRunRepository),
	fx.Provide(repository.NewSlackNotificationRepository),

	fx.Provide(service.NewAggregateStore),
	fx.Provide(service.NewVaultListService),
	fx.Provide(service.NewLedgerService),
	fx.Provide(service.NewGithubService),
	fx.Provide(service.NewMetaService),
	fx.Provide(service.NewPartnerService),
	fx.Provide(service.NewSyncService),
	fx.Provide(service.NewRateLimiterService),

	// register controller of sync module
	fx.Provide(controller.NewController),

	fx.Provide(NewSyncRouter),
)

// init SyncRouter
func NewSyncRouter(app *application.Application, controller *controller.Controller, rateLimiterService *service.RateLimiterService, logger zerolog.Logger) *SyncRouter {
	return &SyncRouter{
		App:                app,
		Controller:         controller,
		RateLimiterService: rateLimiterService,
		Logger:             logger,
	}
}

// register routes of sync module
func (_i *SyncRouter) RegisterSyncRoutes() {
	syncController := _i.Controller.Sync

	rateLimitMiddleware := middleware.RateLimitMiddleware(_i.RateLimiterService, _i.Logger)

	_i.App.Router.GET("/api/v1/sync/{chainId}", rateLimitMiddleware(syncController.GetSnapshot))
	_i.App.Router.GET("/api/v1/sync/{chainId}/vaults", rateLimitMiddleware(syncController.GetVaults))
	_i.App.Router.GET("/api/v1/sync/{chainId}/tokens", rateLimitMiddleware(syncController.GetTokens))
	_i.App.Router.GET("/api/v1/sync/{chainId}/protocols", rateLimitMiddleware(syncController.GetProtocols))
	_i.App.Router.GET("/api/v1/sync/{chainId}/strategies", rateLimitMiddleware(syncController.GetStrategies))
	_i.App.Router.GET("/api/v1/sync/{chainId}/partners", rateLimitMiddleware(syncController.GetPartners))
	_i.App.Router.POST("/api/v1/sync/{chainId}/refresh", rateLimitMiddleware(syncController.TriggerRefresh))
	_i.App.Router.POST("/api/v1/sync/{chainId}/icon", rateLimitMiddleware(syncController.MarkIcon))
	_i.App.Router.POST("/api/v1/sync/{chainId}/tokenIcon", rateLimitMiddleware(syncController.MarkTokenIcon))

	_i.App.Router.GET("/k8s/healthz", syncController.CheckHealthz)
}
