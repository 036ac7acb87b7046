package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-chat-api/internal/infrastructure/persistence/redis"
	"portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/logger"
	"portfolio-chat-api/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// Requests 每个客户端在窗口内允许的请求数
	Requests int
	// Window 统计窗口
	Window time.Duration
	// Backend 指标标签，redis 或 local
	Backend string
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 和路由限流
// 限流器故障时放行，不影响对话
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.Requests <= 0 {
		cfg.Requests = 20
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Backend == "" {
		cfg.Backend = "local"
	}
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.Window.Seconds())))

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := redis.BuildRateLimitKey(c.ClientIP(), route)

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing request",
				"backend", cfg.Backend, "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			metrics.HTTPRateLimitedTotal.WithLabelValues(route, cfg.Backend).Inc()
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":     errors.CodeTooManyRequests,
				"message":  "rate limit exceeded",
				"error":    "Too many messages. Please slow down and try again shortly.",
				"trace_id": c.GetString("trace_id"),
			})
			return
		}

		c.Next()
	}
}
