package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/database"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/middleware"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/service"
)

// Dependencies are the services the HTTP layer is built from.
type Dependencies struct {
	DB                *gorm.DB
	Auth              service.IAuthService
	Restrictions      service.IRestrictionService
	Products          service.IProductService
	Safety            service.ISafetyService
	AssessmentLimiter *middleware.RateLimiter
	Logger            *logger.Logger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", healthCheck(deps.DB))
	router.GET("/api/health", healthCheck(deps.DB))

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	NewRestrictionHandler(deps.Restrictions, deps.Logger).RegisterRoutes(protected)
	NewProductHandler(deps.Products, deps.Logger).RegisterRoutes(protected)
	NewSafetyHandler(deps.Safety, deps.AssessmentLimiter, deps.Logger).RegisterRoutes(protected)
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "healthy", "version": "v1"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.HealthCheck(ctx, db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	}
}
