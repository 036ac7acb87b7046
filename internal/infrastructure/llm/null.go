package llm

import (
	"context"
	"errors"

	"portfolio-chat-api/internal/domain/service"
)

// ErrNotConfigured 未配置凭证时调用 Complete
var ErrNotConfigured = errors.New("completion provider is not configured")

// Null 未配置任何模型时使用，对话走静态兜底
type Null struct{}

var _ service.Completer = Null{}

func (Null) Configured() bool { return false }

func (Null) Provider() string { return "none" }

func (Null) Complete(context.Context, service.CompletionRequest) (string, error) {
	return "", ErrNotConfigured
}
