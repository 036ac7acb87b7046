package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-chat-api/internal/application/chat"
	"portfolio-chat-api/internal/application/intent"
	"portfolio-chat-api/internal/interfaces/http/dto"
	"portfolio-chat-api/pkg/logger"
)

// RetrievalHandler 检索调试处理器
type RetrievalHandler struct {
	svc *chat.Service
}

// NewRetrievalHandler 创建检索调试处理器
func NewRetrievalHandler(svc *chat.Service) *RetrievalHandler {
	return &RetrievalHandler{svc: svc}
}

// DebugRetrieval 调试检索
// @Summary 调试检索
// @Description 返回查询的意图与带余弦分数的召回段落，需要 operator 令牌
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param body body dto.DebugRetrievalRequest true "调试检索请求"
// @Success 200 {object} dto.Response[dto.DebugRetrievalResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/debug/retrieval [post]
func (h *RetrievalHandler) DebugRetrieval(c *gin.Context) {
	var req dto.DebugRetrievalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	in := h.svc.Classify(req.Query)
	k := req.TopK
	if k <= 0 {
		k = intent.ParamsFor(in).TopK
	}

	start := time.Now()
	scored, err := h.svc.Search(ctx, req.Query, k)
	if err != nil {
		logger.Warn(ctx, "debug retrieval failed", "error", err.Error())
		dto.AppError(c, err)
		return
	}

	out := make([]*dto.ScoredPassage, 0, len(scored))
	for _, p := range scored {
		out = append(out, &dto.ScoredPassage{
			Index: p.Index,
			Kind:  string(p.Kind),
			Text:  p.Text,
			Score: p.Score,
		})
	}

	dto.Success(c, &dto.DebugRetrievalResponse{
		Query:      req.Query,
		Intent:     in.String(),
		TopK:       k,
		Passages:   out,
		DurationMs: time.Since(start).Milliseconds(),
	})
}
