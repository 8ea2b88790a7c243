package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/videotube/backend/config"
	"github.com/videotube/backend/internal/handler"
	"github.com/videotube/backend/internal/middleware"
)

type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	healthHandler *handler.HealthHandler

	authMw *middleware.AuthMiddleware
	config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	health *handler.HealthHandler,
	authMw *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		userHandler:   user,
		healthHandler: health,
		authMw:        authMw,
		config:        cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS(r.config.App.CORSOrigin))
	router.Use(middleware.ErrorHandler())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.Health)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(
				r.config.RateLimit.Request,
				time.Duration(r.config.RateLimit.Duration)*time.Second,
			))

			r.userRoutes(v1)
		}
	}

	return router
}
