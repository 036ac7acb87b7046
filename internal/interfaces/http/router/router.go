// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/interfaces/http/handler"
	"portfolio-chat-api/internal/interfaces/http/middleware"
	"portfolio-chat-api/pkg/utils"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Chat      *handler.ChatHandler
	Retrieval *handler.RetrievalHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
	backend  string
}

// New 创建新的路由器
// limiter 为 nil 时不限流，backend 仅用于指标标签
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter, backend string) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
		backend:  backend,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	rl := r.cfg.Security.RateLimit
	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  rl.Enabled,
		Requests: rl.Requests,
		Window:   rl.Window,
		Backend:  r.backend,
	}, r.limiter)

	var debugAuth gin.HandlerFunc
	if jwt := r.cfg.Security.JWT; jwt.Secret != "" {
		debugAuth = middleware.RequireRole(utils.NewJWTManager(jwt.Secret, jwt.Issuer), utils.RoleOperator)
	}

	RegisterV1Routes(r.engine.Group("/v1"), r.handlers.Chat, r.handlers.Retrieval, rateLimit, debugAuth)
}
