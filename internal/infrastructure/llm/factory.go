package llm

import (
	"context"
	"strings"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/pkg/logger"
)

// NewCompleter 根据 llm.default_provider 选择补全实现
//
// gemini 走 GenAI SDK，其余提供商按 OpenAI 兼容接口走 Eino。
// 缺少凭证时返回 Null，对话回落到静态文案。
func NewCompleter(cfg *config.Config, models ChatModelSource) service.Completer {
	ctx := context.Background()
	name, p, ok := cfg.LLM.Default()
	name = strings.ToLower(name)
	if !ok || p.APIKey == "" {
		logger.Warn(ctx, "completion provider is not configured, chat will use static replies", "provider", name)
		return Null{}
	}

	var c service.Completer
	switch name {
	case "gemini":
		c = NewGeminiCompleter(p)
	default:
		c = NewEinoCompleter(models, name, true)
	}

	if cfg.Resilience.CircuitBreaker.Enabled {
		c = NewBreakerCompleter(c, cfg.Resilience.CircuitBreaker)
	}
	logger.Info(ctx, "completion provider selected", "provider", name, "model", p.Model)
	return c
}
