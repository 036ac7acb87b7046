// Package embedding 提供 Embedding 能力的各提供商实现
package embedding

import (
	"context"
	"errors"

	"portfolio-chat-api/internal/domain/service"
)

// ErrNotConfigured 未配置凭证时调用 Embed
var ErrNotConfigured = errors.New("embedding provider is not configured")

// Null 未配置凭证时的空实现，Configured 恒为 false
type Null struct{}

var _ service.Embedder = Null{}

func (Null) Configured() bool { return false }

func (Null) Provider() string { return "none" }

func (Null) Embed(context.Context, []string) ([][]float64, error) {
	return nil, ErrNotConfigured
}
