package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/middleware"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/service"
)

// respondError maps service and engine errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without detail.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var inputErr *safety.InputError
	switch {
	case errors.As(err, &inputErr):
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid_input", inputErr.Error())
	case errors.Is(err, safety.ErrInvalidInput):
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, service.ErrForbidden):
		middleware.AbortWithError(c, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, service.ErrUserExists):
		middleware.AbortWithError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.AbortWithError(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "internal_error", "Internal Server Error")
	}
}

func badRequest(c *gin.Context, err error) {
	middleware.AbortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "unauthorized", "user not authenticated")
	}
	return id, ok
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid_request", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// memberQuery reads the optional member_id query parameter.
func memberQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("member_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid_request", "invalid member_id")
		return nil, false
	}
	return &id, true
}

// limitQuery reads the optional limit query parameter; 0 means unset.
func limitQuery(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
		return 0, false
	}
	return n, true
}
