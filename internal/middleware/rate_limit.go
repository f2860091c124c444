package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig sets a fixed-window request budget.
type RateLimitConfig struct {
	Window    time.Duration
	Limit     int
	KeyPrefix string
}

// Decision is the outcome of one counted request.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per user in redis. Without a client, or with a
// non-positive limit, every request is allowed.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{redis: redisClient, config: config}
}

// NewAssessmentRateLimiter limits safety assessments per user per minute.
func NewAssessmentRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:assessment",
	})
}

func (rl *RateLimiter) enabled() bool {
	return rl != nil && rl.redis != nil && rl.config.Limit > 0 && rl.config.Window > 0
}

// Limit returns middleware charging each request one unit to the
// authenticated user.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Charge(c, 1) {
			c.Next()
		}
	}
}

// Charge counts cost units against the authenticated user and reports whether
// the request may proceed. A refused request has already been answered with
// 429. Redis failures let the request through.
func (rl *RateLimiter) Charge(c *gin.Context, cost int) bool {
	if !rl.enabled() {
		return true
	}
	userID, ok := UserID(c)
	if !ok {
		AbortWithError(c, http.StatusUnauthorized, "unauthorized", "user not authenticated")
		return false
	}

	d, err := rl.AllowN(c.Request.Context(), userID.String(), cost)
	if err != nil {
		c.Header("X-RateLimit-Error", "rate limit check failed")
		return true
	}

	h := c.Writer.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	if d.Allowed {
		return true
	}

	wait := int(time.Until(d.ResetAt).Seconds())
	h.Set("Retry-After", strconv.Itoa(max(wait, 1)))
	AbortWithError(c, http.StatusTooManyRequests, "rate_limited",
		fmt.Sprintf("at most %d assessments per %v", rl.config.Limit, rl.config.Window))
	return false
}

// Allow counts one request for subject in the current window.
func (rl *RateLimiter) Allow(ctx context.Context, subject string) (Decision, error) {
	return rl.AllowN(ctx, subject, 1)
}

// AllowN counts n units for subject in the current window.
func (rl *RateLimiter) AllowN(ctx context.Context, subject string, n int) (Decision, error) {
	n = max(n, 1)
	start := time.Now().Truncate(rl.config.Window)
	key := rl.config.KeyPrefix + ":" + subject + ":" + strconv.FormatInt(start.Unix(), 10)

	var count *redis.IntCmd
	_, err := rl.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.IncrBy(ctx, key, int64(n))
		pipe.Expire(ctx, key, rl.config.Window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count request: %w", err)
	}

	used := int(count.Val())
	return Decision{
		Allowed:   used <= rl.config.Limit,
		Remaining: max(rl.config.Limit-used, 0),
		ResetAt:   start.Add(rl.config.Window),
	}, nil
}
