package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/videotube/backend/config"
	"github.com/videotube/backend/internal/handler"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/repository"
	"github.com/videotube/backend/internal/router"
	"github.com/videotube/backend/internal/service"
	"github.com/videotube/backend/pkg/database"
	"github.com/videotube/backend/pkg/logger"
	"github.com/videotube/backend/pkg/media"
	"github.com/videotube/backend/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:         config.Database.Host,
		Port:         config.Database.Port,
		User:         config.Database.User,
		Password:     config.Database.Password,
		Database:     config.Database.Name,
		SSLMode:      config.Database.SSLMode,
		MaxIdleConns: config.Database.MaxIdleConns,
		MaxOpenConns: config.Database.MaxOpenConns,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.CloseDB(db) }()

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	if err := database.CreateIndexes(db); err != nil {
		logger.GetLogger().Warn("Failed to create database indexes", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Redis backs the channel-profile cache; startup continues without it.
	cache, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Warn("Redis unavailable, channel profile caching disabled", zap.Error(err))
		cache = nil
	} else {
		defer func() { _ = cache.Close() }()
	}

	uploader := media.NewCloudinaryUploader(config.Media)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Services
	tokenService := service.NewTokenService(config.JWT, userRepo)
	authService := service.NewAuthService(userRepo, tokenService)

	var profileCache service.ProfileCache
	if cache != nil {
		profileCache = cache
	}
	userService := service.NewUserService(userRepo, subscriptionRepo, profileCache, config.Redis.ChannelTTL)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, tokenService, uploader)
	userHandler := handler.NewUserHandler(userService, uploader)
	healthHandler := handler.NewHealthHandler(db, cache)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	r := router.NewRouter(
		authHandler,
		userHandler,
		healthHandler,
		authMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
