package main

import (
	"context"
	"fmt"
	"os"

	"github.com/steven-d-pennington/restricted-diet-app/backend/config"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/api"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/cache"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/database"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/middleware"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/server"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment.LogMode(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	ctx := context.Background()
	assessmentCache := cache.NewAssessmentCache(nil, 0)
	var limiter *middleware.RateLimiter
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			// continue without caching or rate limiting
			log.Warn("redis unavailable", "error", err)
		} else {
			defer redisClient.Close()
			assessmentCache = cache.NewAssessmentCache(redisClient, cfg.AssessmentCacheTTL)
			limiter = middleware.NewAssessmentRateLimiter(redisClient, cfg.AssessmentRateLimit)
		}
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	restrictionService := service.NewRestrictionService(db, log)
	productService := service.NewProductService(db, log)
	safetyService := service.NewSafetyService(db, restrictionService, productService, assessmentCache, log)
	safetyService.SetBatchConcurrency(cfg.AssessmentConcurrency)

	srv := server.New(cfg, api.Dependencies{
		DB:                db,
		Auth:              authService,
		Restrictions:      restrictionService,
		Products:          productService,
		Safety:            safetyService,
		AssessmentLimiter: limiter,
		Logger:            log,
	})
	if err := srv.Start(); err != nil {
		log.Fatal("server error", "error", err)
	}
	log.Info("server stopped")
}
