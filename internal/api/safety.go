package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/middleware"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/service"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

type SafetyHandler struct {
	safety  service.ISafetyService
	limiter *middleware.RateLimiter
	log     *logger.Logger
}

// NewSafetyHandler builds the assessment endpoints. limiter may be nil.
func NewSafetyHandler(svc service.ISafetyService, limiter *middleware.RateLimiter, log *logger.Logger) *SafetyHandler {
	return &SafetyHandler{safety: svc, limiter: limiter, log: log}
}

func (h *SafetyHandler) RegisterRoutes(router *gin.RouterGroup) {
	limited := h.limiter.Limit()
	products := router.Group("/products")
	{
		products.POST("/assess", h.AssessBatch)
		products.POST("/:id/assess", limited, h.Assess)
		products.GET("/:id/alternatives", limited, h.Alternatives)
		products.GET("/:id/assessments", h.History)
	}
}

func (h *SafetyHandler) Assess(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := memberQuery(c)
	if !ok {
		return
	}
	result, err := h.safety.Assess(c.Request.Context(), userID, memberID, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SafetyHandler) AssessBatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.BatchAssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// each product in a batch costs one assessment
	if !h.limiter.Charge(c, min(len(req.ProductIDs), service.MaxBatchSize)) {
		return
	}
	results, err := h.safety.AssessBatch(c.Request.Context(), userID, req.FamilyMemberID, req.ProductIDs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": results})
}

func (h *SafetyHandler) Alternatives(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := memberQuery(c)
	if !ok {
		return
	}

	var opts []safety.RankOption
	if raw := c.Query("min_level"); raw != "" {
		level, err := safety.ParseRiskLevel(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		opts = append(opts, safety.WithMinimumLevel(level))
	}
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	if limit > 0 {
		opts = append(opts, safety.WithLimit(limit))
	}

	alts, err := h.safety.Alternatives(c.Request.Context(), userID, memberID, productID, opts...)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternatives": alts})
}

func (h *SafetyHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	out, err := h.safety.History(c.Request.Context(), userID, productID, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
