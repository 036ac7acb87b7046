//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"portfolio-chat-api/internal/application/chat"
	"portfolio-chat-api/internal/config"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		CapabilitySet,
		ChatSet,
		RedisSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeChat 仅初始化对话服务（用于 chatctl）
func InitializeChat(cfg *config.Config) (*chat.Service, error) {
	wire.Build(
		CapabilitySet,
		ChatSet,
	)
	return nil, nil
}
