package handler

import (
	"net/http"

	"github.com/annazecevic/catalog-service/config"
	"github.com/annazecevic/catalog-service/middleware"
	"github.com/annazecevic/catalog-service/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the engine with the shared middleware chain, the page
// templates and every route.
func NewRouter(cfg *config.Config, catalog *service.CatalogService, users service.UserService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.RedirectTrailingSlash = false
	loadTemplates(router)

	router.Use(
		middleware.SecurityHeaders(),
		middleware.Metrics(),
		middleware.RequestMode(),
		middleware.Session(cfg.JWTSecret),
		middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow).Middleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/catalog")
	})

	var mutating []gin.HandlerFunc
	if cfg.RequireAuth {
		mutating = append(mutating, middleware.RequireUser())
	}
	NewCatalogHandler(catalog).RegisterRoutes(router, mutating...)
	NewUserHandler(users, cfg.JWTSecret, cfg.SessionTTL, cfg.Environment == "production").RegisterRoutes(router)

	return router
}
