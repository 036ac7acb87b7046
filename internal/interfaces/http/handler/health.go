package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-chat-api/internal/application/chat"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	redis   *redis.Client
	chat    *chat.Service
	version string
}

// NewHealthHandler 创建健康检查处理器，redisClient 为 nil 表示未启用
func NewHealthHandler(redisClient *redis.Client, svc *chat.Service, version string) *HealthHandler {
	return &HealthHandler{
		redis:   redisClient,
		chat:    svc,
		version: version,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 就绪检查接口
// redis 与索引都是可选依赖，异常时只标记 degraded，静态兜底仍可服务
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"redis": {Status: "disabled"},
		"index": {Status: "unknown"},
	}
	degraded := false

	if h.redis != nil {
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "degraded"
			checks["redis"].Error = err.Error()
			degraded = true
		} else {
			checks["redis"].Status = "ok"
		}
	}

	if h.chat != nil {
		st := h.chat.Status()
		switch {
		case st.Index.State == retrieval.StateReady:
			checks["index"].Status = "ok"
		case !st.EmbeddingConfigured:
			checks["index"].Status = "disabled"
		default:
			checks["index"].Status = "degraded"
			checks["index"].Error = st.Index.LastError
			degraded = true
		}
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if degraded {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
