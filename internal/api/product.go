package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/service"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

type ProductHandler struct {
	products service.IProductService
	log      *logger.Logger
}

func NewProductHandler(products service.IProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.Search)
		products.POST("", h.Create)
		products.GET("/:id", h.Get)
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.products.Create(c.Request.Context(), &userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Search(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	out, err := h.products.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
