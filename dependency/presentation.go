package dependency

import (
	"context"
	"time"

	"github.com/banterhq/banter/presentation/controllers/auth"
	"github.com/banterhq/banter/presentation/controllers/credential"
	"github.com/banterhq/banter/presentation/controllers/message"
	"github.com/banterhq/banter/presentation/controllers/room"
	wsCtrl "github.com/banterhq/banter/presentation/controllers/websocket"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/banterhq/banter/presentation/routes"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	banterws "github.com/banterhq/banter/infrastructure/websocket"
)

func (c *Container) initControllers() {
	authenticator := banterws.NewAuthenticator(c.TokenUC, c.Logger)

	c.AuthController = auth.NewAuthController(c.IdentityUC, c.TokenUC)
	c.CredentialController = credential.NewCredentialController(c.TokenUC)
	c.RoomController = room.NewRoomController(c.RoomUC, c.MembershipUC)
	c.MessageController = message.NewMessageController(c.MessageUC)
	c.WebsocketController = wsCtrl.NewWebSocketController(
		c.RoomUC,
		c.MembershipUC,
		c.MessageUC,
		authenticator,
		c.WSCore,
		c.Logger,
	)

	c.Logger.Info("Controllers initialized successfully")
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         5 * time.Second,
	}))

	router.Use(middlewares.GinLogger(c.Logger))
	router.Use(middlewares.CorsMiddleware(c.Config))
	router.Use(middlewares.HTTPMetrics(c.Metrics))

	router.GET("/health", c.healthCheckHandler)
	router.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.Use(middlewares.Authenticate(c.TokenUC, c.Metrics, c.Logger))

		routes.AuthRoutes(v1, c.AuthController)
		routes.CredentialRoutes(v1, c.CredentialController)
		routes.RoomRoutes(v1, c.RoomController, c.MessageController)
		routes.WebsocketRoutes(v1, c.WebsocketController)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Container) Shutdown() error {
	c.Logger.Info("Shutting down dependencies...")

	c.WSCore.Shutdown()

	if c.TracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.TracerProvider.Shutdown(ctx); err != nil {
			c.Logger.Error("failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if c.Presence != nil {
		if err := c.Presence.Close(); err != nil {
			c.Logger.Error("failed to close presence registry", zap.Error(err))
		}
	}

	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				c.Logger.Error("failed to close database", zap.Error(err))
			}
		}
	}

	c.flushSentry()

	if err := c.Logger.Sync(); err != nil {
		c.Logger.Error("failed to sync logger", zap.Error(err))
	}

	c.Logger.Info("Dependencies shut down successfully")

	return nil
}
