package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/config"
	"github.com/dulanjanabandara/job-recommender-system/internal/delivery/http/handler"
	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
	"github.com/dulanjanabandara/job-recommender-system/internal/middleware"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/user"
)

// HealthChecker is implemented by every store connection.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Services struct {
	Jobs      *crud.Service[domainJob.Job]
	Users     *user.Service
	UserAdmin *crud.Service[domainUser.User]
}

func SetupRoutes(cfg *config.Config, services Services, limiter middleware.Limiter, db HealthChecker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		logger.Warn("Failed to reset trusted proxies", zap.Error(err))
	}

	// The error handler goes first so it formats errors recorded by everything after it.
	router.Use(middleware.ErrorHandler(cfg.IsDevelopment()))
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeadersMiddleware())
	if cfg.IsDevelopment() {
		router.Use(middleware.LoggingMiddleware())
	}
	router.Use(middleware.CORS(&cfg.CORS))
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.ForPathPrefix("/api", middleware.RateLimitMiddleware(limiter)))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(c.Request.Context()); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	jobHandler := handler.NewJobHandler(services.Jobs)
	userHandler := handler.NewUserHandler(services.Users, services.UserAdmin)

	v1 := router.Group("/api/v1")
	{
		jobHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1)
	}

	router.NoRoute(middleware.NotFoundHandler(cfg.Server.StaticDir))

	logger.Info("All routes initialized")
	return router
}
