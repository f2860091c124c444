package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/service"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

type RestrictionHandler struct {
	restrictions service.IRestrictionService
	log          *logger.Logger
}

func NewRestrictionHandler(restrictions service.IRestrictionService, log *logger.Logger) *RestrictionHandler {
	return &RestrictionHandler{restrictions: restrictions, log: log}
}

func (h *RestrictionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/restrictions", h.Catalog)

	me := router.Group("/me")
	{
		me.GET("/restrictions", h.List)
		me.POST("/restrictions", h.Add)
		me.PATCH("/restrictions/:id", h.UpdateSeverity)
		me.DELETE("/restrictions/:id", h.Deactivate)
		me.GET("/members", h.ListMembers)
		me.POST("/members", h.AddMember)
	}
}

func (h *RestrictionHandler) Catalog(c *gin.Context) {
	out, err := h.restrictions.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *RestrictionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	memberID, ok := memberQuery(c)
	if !ok {
		return
	}
	out, err := h.restrictions.List(c.Request.Context(), userID, memberID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *RestrictionHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AddRestrictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ur, err := h.restrictions.Add(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, ur)
}

func (h *RestrictionHandler) UpdateSeverity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.UpdateRestrictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ur, err := h.restrictions.UpdateSeverity(c.Request.Context(), userID, id, req.Severity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ur)
}

func (h *RestrictionHandler) Deactivate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.restrictions.Deactivate(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RestrictionHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.restrictions.ListMembers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *RestrictionHandler) AddMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AddFamilyMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := h.restrictions.AddMember(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}
