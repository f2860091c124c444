package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/middleware"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/testhelpers"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) middleware.ErrorBody {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func authRouter(v middleware.TokenValidator) *gin.Engine {
	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(v), func(c *gin.Context) {
		id, ok := middleware.UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := new(testhelpers.MockTokenValidator)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID, Name: "ada"}, nil)
	validator.On("ValidateToken", "old").Return(nil, middleware.ErrTokenExpired)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("invalid token"))
	r := authRouter(validator)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"valid", "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", "bearer good", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "unauthorized"},
		{"expired", "Bearer old", http.StatusUnauthorized, "token_expired"},
		{"invalid", "Bearer bad", http.StatusUnauthorized, "invalid_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), rr.Body.String())
				return
			}
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
	validator.AssertExpectations(t)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(logger.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, middleware.ErrorBody{Message: "Internal Server Error", Code: "internal_error"}, decodeError(t, rr))
}

func TestRateLimiterWithoutRedisAllowsAll(t *testing.T) {
	rl := middleware.NewAssessmentRateLimiter(nil, 1)
	r := gin.New()
	r.GET("/x", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	}
}

func TestChargeWithoutLimiterAllows(t *testing.T) {
	var rl *middleware.RateLimiter
	r := gin.New()
	r.POST("/batch", func(c *gin.Context) {
		if rl.Charge(c, 50) {
			c.Status(http.StatusNoContent)
		}
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/batch", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS(nil))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
