// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"portfolio-chat-api/internal/application/chat"
	"portfolio-chat-api/internal/application/knowledge"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/internal/infrastructure/embedding"
	"portfolio-chat-api/internal/infrastructure/llm"
	"portfolio-chat-api/internal/infrastructure/persistence/redis"
	"portfolio-chat-api/internal/interfaces/http/handler"
	"portfolio-chat-api/internal/interfaces/http/middleware"
	"portfolio-chat-api/internal/interfaces/http/router"
	"portfolio-chat-api/internal/workflow/prompt"
	"portfolio-chat-api/pkg/logger"
)

// App 应用依赖容器
type App struct {
	Router *router.Router
	Chat   *chat.Service
}

// RateLimiting 选定的限流实现及其指标标签
type RateLimiting struct {
	Limiter middleware.RateLimiter
	Backend string
}

// CapabilitySet 外部能力（embedding、补全），缺少凭证时为空实现
var CapabilitySet = wire.NewSet(
	ProvideEmbedder,
	llm.NewEinoFactory,
	wire.Bind(new(llm.ChatModelSource), new(*llm.EinoFactory)),
	ProvideCompleter,
)

// ChatSet 内容、索引与对话服务
var ChatSet = wire.NewSet(
	ProvideContent,
	knowledge.NewCorpus,
	ProvideIndex,
	retrieval.NewRetriever,
	prompt.NewRegistry,
	ProvideGenerator,
	ProvideChatService,
)

// RedisSet 可选 Redis 与限流
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideRateLimiting,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewChatHandler,
	handler.NewRetrievalHandler,
	ProvideHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)

// ProvideContent 加载作品集内容表，未配置路径时使用内置内容
func ProvideContent(cfg *config.Config) (*entity.Content, error) {
	return knowledge.LoadContent(cfg.Knowledge.ContentPath)
}

// ProvideEmbedder 提供 Embedder
func ProvideEmbedder(cfg *config.Config) service.Embedder {
	return embedding.NewEmbedder(cfg)
}

// ProvideCompleter 提供补全能力
func ProvideCompleter(cfg *config.Config, models llm.ChatModelSource) service.Completer {
	return llm.NewCompleter(cfg, models)
}

// ProvideIndex 提供进程内 embedding 索引
func ProvideIndex(corpus *knowledge.Corpus, embedder service.Embedder, cfg *config.Config) *retrieval.Index {
	return retrieval.NewIndex(corpus, embedder, retrieval.IndexOptions{
		BuildTimeout: cfg.Retrieval.BuildTimeout,
		BuildRetries: cfg.Retrieval.BuildRetries,
	})
}

// ProvideGenerator 提供回复生成器
func ProvideGenerator(
	content *entity.Content,
	index *retrieval.Index,
	retriever *retrieval.Retriever,
	completer service.Completer,
	prompts *prompt.Registry,
	cfg *config.Config,
) *chat.Generator {
	return chat.NewGenerator(content, index, retriever, completer, prompts, chat.GeneratorOptions{
		Temperature: float32(cfg.LLM.Temperature),
	})
}

// ProvideChatService 提供对话服务
func ProvideChatService(
	corpus *knowledge.Corpus,
	index *retrieval.Index,
	retriever *retrieval.Retriever,
	generator *chat.Generator,
	embedder service.Embedder,
	completer service.Completer,
	cfg *config.Config,
) *chat.Service {
	return chat.NewService(corpus, index, retriever, generator, embedder, completer, chat.Options{
		MaxMessageRunes: cfg.Chat.MaxMessageRunes,
	})
}

// ProvideRedisClientOptional 提供 Redis 客户端
// 未启用或连接失败时返回 nil，限流退回进程内实现
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis unavailable, falling back to in-process rate limiting", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiting 有 Redis 时多实例共享计数，否则使用进程内限流
func ProvideRateLimiting(cfg *config.Config, client *redis.Client) (RateLimiting, error) {
	if client != nil {
		return RateLimiting{Limiter: redis.NewRateLimiter(client), Backend: "redis"}, nil
	}
	local, err := middleware.NewLocalRateLimiter(cfg.Security.RateLimit.LocalMaxKeys)
	if err != nil {
		return RateLimiting{}, err
	}
	return RateLimiting{Limiter: local, Backend: "local"}, nil
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(client *redis.Client, svc *chat.Service, cfg *config.Config) *handler.HealthHandler {
	return handler.NewHealthHandler(client, svc, cfg.App.Version)
}

// ProvideRouter 提供 HTTP 路由器
func ProvideRouter(cfg *config.Config, handlers router.Handlers, rl RateLimiting) *router.Router {
	return router.New(cfg, handlers, rl.Limiter, rl.Backend)
}
