// Package routes assembles the Gin engine serving the forum API.
package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"quantumflux/database"
	"quantumflux/internal/cache"
	"quantumflux/internal/config"
	"quantumflux/internal/http-api/handler"
	"quantumflux/internal/http-api/middleware"
	"quantumflux/internal/http-api/repository"
	"quantumflux/internal/http-api/service"
	"quantumflux/internal/middleware/auth"
	"quantumflux/internal/observability"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the shared resources the API is built from.
// Cache and Metrics may be nil when disabled.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   *cache.ListingCache
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// SetupRouter wires repositories, services and handlers into a Gin engine.
func SetupRouter(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(deps.Logger, deps.Metrics))
	router.Use(cors.New(corsConfig(deps.Config.CORSOrigins)))

	// a nil *ListingCache must not become a non-nil interface
	var listing service.ListingCache
	if deps.Cache != nil {
		listing = deps.Cache
	}

	users := repository.NewUserRepository(deps.DB)
	hasher := auth.NewHasher(deps.Config.BcryptCost)

	authService := service.NewAuthService(users, hasher, deps.Config)
	topicService := service.NewTopicService(deps.DB, listing, deps.Metrics, deps.Logger)
	commentService := service.NewCommentService(repository.NewCommentRepository(deps.DB), users, listing, deps.Logger)
	profileService := service.NewProfileService(users, hasher)
	activityService := service.NewActivityService(repository.NewActivityRepo(deps.DB))

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService))

	handler.NewAuthHandler(authService).RegisterRoutes(api)
	handler.NewTopicHandler(topicService).RegisterRoutes(api, protected)
	handler.NewCommentHandler(commentService).RegisterRoutes(api, protected)
	handler.NewProfileHandler(profileService, activityService).RegisterRoutes(protected)

	checks := map[string]handler.Checker{
		"database": func(ctx context.Context) error { return database.Ping(ctx, deps.DB) },
	}
	if deps.Cache != nil {
		checks["cache"] = deps.Cache.Ping
	}
	router.GET("/health", handler.NewHealthHandler(checks).Health)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.HeaderRequestID}
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
