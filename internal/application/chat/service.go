package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"portfolio-chat-api/internal/application/intent"
	"portfolio-chat-api/internal/application/knowledge"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	apperrors "portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/logger"
	"portfolio-chat-api/pkg/metrics"
	"portfolio-chat-api/pkg/utils"
)

const (
	defaultMaxMessageRunes = 2000
	logPreviewRunes        = 80
)

// Options 服务参数
type Options struct {
	MaxMessageRunes int
}

// Status 服务能力与索引状态
type Status struct {
	CompletionConfigured bool
	EmbeddingConfigured  bool
	Index                retrieval.IndexStatus
}

// Service 对话入口，持有索引和外部能力
type Service struct {
	corpus    *knowledge.Corpus
	index     *retrieval.Index
	retriever *retrieval.Retriever
	generator *Generator
	embedder  service.Embedder
	completer service.Completer
	opts      Options

	now func() time.Time
}

// NewService 创建对话服务
func NewService(
	corpus *knowledge.Corpus,
	index *retrieval.Index,
	retriever *retrieval.Retriever,
	generator *Generator,
	embedder service.Embedder,
	completer service.Completer,
	opts Options,
) *Service {
	if opts.MaxMessageRunes <= 0 {
		opts.MaxMessageRunes = defaultMaxMessageRunes
	}
	return &Service{
		corpus:    corpus,
		index:     index,
		retriever: retriever,
		generator: generator,
		embedder:  embedder,
		completer: completer,
		opts:      opts,
		now:       time.Now,
	}
}

// Handle 处理一条用户消息
// 空白消息或超长消息返回 CodeInvalidParam，且不调用任何外部能力
func (s *Service) Handle(ctx context.Context, message string) (*entity.ChatTurn, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "message is required")
	}
	if n := utf8.RuneCountInString(trimmed); n > s.opts.MaxMessageRunes {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "message is too long").
			WithDetail(fmt.Sprintf("%d characters, limit %d", n, s.opts.MaxMessageRunes))
	}

	in := intent.Classify(trimmed)
	metrics.ChatRequestsTotal.WithLabelValues(string(in)).Inc()
	logger.Debug(ctx, "chat message received", "intent", string(in), "preview", utils.TruncateRunes(trimmed, logPreviewRunes))

	reply := s.generator.Generate(ctx, trimmed, in)

	return &entity.ChatTurn{
		Message:   trimmed,
		Intent:    in,
		Reply:     reply.Text,
		Grounded:  reply.Grounded,
		Timestamp: s.now().UTC(),
	}, nil
}

// Classify 仅做意图分类
func (s *Service) Classify(message string) entity.Intent {
	return intent.Classify(message)
}

// Passages 返回当前语料
func (s *Service) Passages() []entity.Passage {
	return s.corpus.Passages()
}

// Status 返回能力配置与索引状态
func (s *Service) Status() Status {
	return Status{
		CompletionConfigured: s.completer != nil && s.completer.Configured(),
		EmbeddingConfigured:  s.embedder != nil && s.embedder.Configured(),
		Index:                s.index.Status(),
	}
}

// Search 带分数的召回，供调试接口使用；必要时先构建索引
func (s *Service) Search(ctx context.Context, query string, k int) ([]retrieval.ScoredPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "query is required")
	}
	if k <= 0 {
		k = intent.ParamsFor(intent.Classify(query)).TopK
	}

	if err := s.index.EnsureReady(ctx); err != nil {
		if errors.Is(err, retrieval.ErrEmbedderUnavailable) {
			return nil, apperrors.ErrNotConfigured.WithError(err)
		}
		return nil, apperrors.ErrIndexNotReady.WithError(err)
	}

	scored, err := s.retriever.Search(ctx, query, k)
	if err != nil {
		return nil, apperrors.ErrEmbeddingFailed.WithError(err)
	}
	return scored, nil
}

// Warmup 延迟 delay 后在后台预建索引，失败只记录日志，索引保持 ABSENT
// 补全未配置时对话不会读索引，跳过预建；调试接口仍会按需构建
func (s *Service) Warmup(ctx context.Context, delay time.Duration) error {
	if s.embedder == nil || !s.embedder.Configured() {
		logger.Debug(ctx, "embedding not configured, skipping index warmup")
		return nil
	}
	if s.completer == nil || !s.completer.Configured() {
		logger.Debug(ctx, "completion not configured, skipping index warmup")
		return nil
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := s.index.EnsureReady(ctx); err != nil {
		logger.Warn(ctx, "background index warmup failed", "error", err.Error())
		return err
	}
	return nil
}
