package middleware

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const defaultLocalMaxKeys = 10000

// LocalRateLimiter 进程内令牌桶限流，redis 未启用时使用
// 每个键一个 rate.Limiter，键数量由 LRU 限制
type LocalRateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
}

var _ RateLimiter = (*LocalRateLimiter)(nil)

// NewLocalRateLimiter 创建进程内限流器
func NewLocalRateLimiter(maxKeys int) (*LocalRateLimiter, error) {
	if maxKeys <= 0 {
		maxKeys = defaultLocalMaxKeys
	}
	cache, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter cache: %w", err)
	}
	return &LocalRateLimiter{limiters: cache}, nil
}

// Allow 窗口内平均放行 limit 个请求，突发上限为 limit
func (l *LocalRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}

	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		// 并发首访时以先写入者为准
		if prev, ok, _ := l.limiters.PeekOrAdd(key, limiter); ok {
			limiter = prev
		}
	}
	return limiter.Allow(), nil
}
