package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/api/handlers"
	"github.com/craftlink/craftlink-backend/internal/api/middleware"
	"github.com/craftlink/craftlink-backend/internal/domain/services/cashout"
	"github.com/craftlink/craftlink-backend/internal/domain/services/notification"
	"github.com/craftlink/craftlink-backend/internal/domain/services/settlement"
	"github.com/craftlink/craftlink-backend/internal/domain/services/wallet"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/cache"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/repositories"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// Dependencies collects everything the router needs wired in
type Dependencies struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              *sqlx.DB
	Redis           cache.RedisClient
	Gateway         paygate.Gateway
	Settlement      *settlement.Service
	Wallet          *wallet.Service
	Cashout         *cashout.Service
	Notifications   *notification.Service
	DestinationRepo *repositories.DestinationRepository
}

// SetupRoutes configures all application routes
func SetupRoutes(deps *Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))

	settlementHandler := handlers.NewSettlementHandler(deps.Settlement, deps.Config.Server.PublicBaseURL, deps.Logger)
	walletHandler := handlers.NewWalletHandler(deps.Wallet, deps.Config.Settlement.DefaultCurrency, deps.Logger)
	cashoutHandler := handlers.NewCashoutHandler(deps.Cashout, deps.Config.Settlement.DefaultCurrency, deps.Logger)
	destinationHandler := handlers.NewDestinationHandler(deps.DestinationRepo, deps.Logger)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications, deps.Logger)
	webhookHandler := handlers.NewPaygateWebhookHandler(deps.Gateway, deps.Settlement, deps.Cashout, deps.Redis, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhooks are signature-verified, never JWT-authenticated
	router.POST("/webhooks/paygate", webhookHandler.HandleWebhook)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(deps.Redis, deps.Config.Server.RateLimitPerMin, deps.Logger))
	v1.Use(middleware.Authentication(deps.Config, deps.Logger))
	{
		escrows := v1.Group("/escrows")
		{
			escrows.POST("", settlementHandler.CreateEscrow)
			escrows.GET("/:id", settlementHandler.GetIntent)
			escrows.POST("/:id/verify", settlementHandler.Verify)
		}

		investments := v1.Group("/investments")
		{
			investments.POST("", settlementHandler.CreateInvestment)
			investments.GET("/:id", settlementHandler.GetIntent)
			investments.POST("/:id/verify", settlementHandler.Verify)
		}

		if deps.Config.Settlement.AllowDevBypass {
			// Local testing only; config validation refuses this in production
			v1.POST("/escrows/:id/dev-confirm", settlementHandler.DevConfirm)
			v1.POST("/investments/:id/dev-confirm", settlementHandler.DevConfirm)
		}

		walletGroup := v1.Group("/wallet")
		{
			walletGroup.GET("", walletHandler.GetWallet)
			walletGroup.GET("/ledger", walletHandler.GetLedger)
		}

		cashouts := v1.Group("/cashouts")
		{
			cashouts.POST("", cashoutHandler.RequestCashout)
			cashouts.GET("", cashoutHandler.ListCashouts)
			cashouts.GET("/:id", cashoutHandler.GetCashout)
		}

		v1.GET("/payout-destination", destinationHandler.GetDestination)
		v1.PUT("/payout-destination", destinationHandler.UpsertDestination)

		v1.GET("/notifications", notificationHandler.ListNotifications)
	}

	return router
}
