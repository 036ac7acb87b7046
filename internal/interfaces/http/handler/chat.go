// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-chat-api/internal/application/chat"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/interfaces/http/dto"
	apperrors "portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/logger"
)

const (
	msgMessageRequired = "Message is required"
	msgChatFailed      = "Something went wrong. Please try again."

	// timestampLayout RFC3339 毫秒精度，UTC 下以 Z 结尾
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	svc *chat.Service
}

// NewChatHandler 创建对话处理器
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat 发送消息
// @Summary 对话
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "消息"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ChatErrorResponse
// @Failure 500 {object} dto.ChatErrorResponse
// @Router /v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, dto.ChatErrorResponse{Error: msgMessageRequired})
		return
	}

	ctx := c.Request.Context()
	turn, err := h.svc.Handle(ctx, req.Message)
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr.HTTPStatus > 0 && appErr.HTTPStatus < http.StatusInternalServerError {
			c.JSON(appErr.HTTPStatus, dto.ChatErrorResponse{Error: appErr.Message, Detail: appErr.Detail})
			return
		}
		logger.Error(ctx, "chat request failed", err)
		c.JSON(http.StatusInternalServerError, dto.ChatErrorResponse{Error: msgChatFailed})
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{
		Reply:     turn.Reply,
		Intent:    turn.Intent.String(),
		Timestamp: turn.Timestamp.UTC().Format(timestampLayout),
	})
}

// Status 对话能力与索引状态
// @Summary 对话状态
// @Tags Chat
// @Produce json
// @Success 200 {object} dto.ChatStatusResponse
// @Router /v1/chat [get]
func (h *ChatHandler) Status(c *gin.Context) {
	st := h.svc.Status()
	ready := st.Index.State == retrieval.StateReady

	resp := dto.ChatStatusResponse{
		Status:               "ok",
		CompletionConfigured: st.CompletionConfigured,
		EmbeddingConfigured:  st.EmbeddingConfigured,
		IndexState:           string(st.Index.State),
		IndexInitialized:     ready,
		VectorsReady:         ready,
		IndexLastError:       st.Index.LastError,
	}
	if ready {
		resp.PassagesIndexed = st.Index.Passages
	}
	if !st.Index.BuiltAt.IsZero() {
		resp.IndexBuiltAt = st.Index.BuiltAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
