package embedding

import (
	"context"
	"strings"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/pkg/logger"
)

// NewEmbedder 根据配置选择 Embedder
//
// embedding.api_key 为空时复用同名 LLM 提供商的密钥；
// 提供商未知或缺少凭证时返回 Null，索引与检索随之降级。
func NewEmbedder(cfg *config.Config) service.Embedder {
	ctx := context.Background()
	ec := cfg.Embedding
	ec.Provider = strings.ToLower(strings.TrimSpace(ec.Provider))
	if ec.APIKey == "" {
		if p, ok := cfg.LLM.Providers[ec.Provider]; ok {
			ec.APIKey = p.APIKey
		}
	}

	var e service.Embedder
	switch ec.Provider {
	case "openai":
		e = NewEinoEmbedder(ec)
	case "gemini":
		e = NewGeminiEmbedder(ec)
	case "http":
		e = NewHTTPEmbedder(ec)
	case "", "none":
		logger.Warn(ctx, "embedding provider disabled, retrieval will run in degraded mode")
		return Null{}
	default:
		logger.Warn(ctx, "unknown embedding provider, retrieval will run in degraded mode", "provider", ec.Provider)
		return Null{}
	}

	if !e.Configured() {
		logger.Warn(ctx, "embedding provider is missing credentials, retrieval will run in degraded mode",
			"provider", ec.Provider)
		return Null{}
	}
	logger.Info(ctx, "embedding provider selected", "provider", ec.Provider)
	return e
}
