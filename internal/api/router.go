package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/database"
	"github.com/AvigateGroup/avigate-api-sub004/internal/geocoding"
	"github.com/AvigateGroup/avigate-api-sub004/internal/handler"
	"github.com/AvigateGroup/avigate-api-sub004/internal/middleware"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
	"github.com/AvigateGroup/avigate-api-sub004/internal/service"
)

// SetupRouter wires repositories, services and handlers onto a gin engine.
func SetupRouter(cfg *config.Config) *gin.Engine {
	db := database.GetDB()

	locationRepo := repository.NewLocationRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	segmentRepo := repository.NewSegmentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	provider := geocoding.NewGoogleClient(cfg.GoogleMapsAPIKey, cfg.GoogleMapsURL, cfg.ProviderTimeout)
	responseCache := gocache.New(cfg.ResponseCacheTTL, 2*cfg.ResponseCacheTTL)

	locationService := service.NewLocationService(locationRepo, provider, cfg)
	graphService := service.NewGraphService(routeRepo, segmentRepo, cfg.SegmentHopBound)
	fareService := service.NewFareService(feedbackRepo, routeRepo, cfg)
	fallbackService := service.NewFallbackService(provider, cfg)
	scorer := service.NewConfidenceScorer(cfg)
	planner := service.NewPlannerService(
		locationService, graphService, fareService, fallbackService, scorer,
		locationRepo, routeRepo, responseCache, cfg,
	)

	navigationHandler := handler.NewNavigationHandler(planner, fareService)
	locationHandler := handler.NewLocationHandler(locationService)
	routeHandler := handler.NewRouteHandler(graphService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Avigate navigation API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth(cfg.JWTSecret))
	{
		navigation := api.Group("/navigation")
		{
			navigation.POST("/plan", middleware.RateLimit(30, time.Minute), navigationHandler.Plan)
			navigation.POST("/feedback", navigationHandler.SubmitFeedback)
		}

		locations := api.Group("/locations")
		{
			locations.GET("/search", locationHandler.Search)
			locations.GET("/:id", locationHandler.GetByID)
		}

		routes := api.Group("/routes")
		{
			routes.GET("/:id", routeHandler.GetByID)
		}
	}

	return r
}
