// Package chat 对话编排：意图分类、召回、生成与降级
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"portfolio-chat-api/internal/application/intent"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/internal/workflow/prompt"
	apperrors "portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/logger"
	"portfolio-chat-api/pkg/metrics"
	"portfolio-chat-api/pkg/tracer"
)

// 降级原因，同时作为 replies_total 指标的 source 标签
const (
	ReasonCompletionUnconfigured = "completion_unconfigured"
	ReasonIndexUnavailable       = "index_unavailable"
	ReasonRetrievalFailed        = "retrieval_failed"
	ReasonPromptFailed           = "prompt_failed"
	ReasonCompletionFailed       = "completion_failed"
	ReasonCircuitOpen            = "circuit_open"
	ReasonEmptyCompletion        = "empty_completion"
	ReasonPanic                  = "panic"
)

const defaultTemperature = 0.3

// Reply 生成结果
// Grounded=false 时 FallbackReason 说明原因
type Reply struct {
	Text           string
	Grounded       bool
	FallbackReason string
	Passages       []entity.Passage
}

// GeneratorOptions 生成参数
type GeneratorOptions struct {
	Temperature float32
}

// Generator 基于召回上下文生成回复，任何环节失败都退回静态文案
type Generator struct {
	content   *entity.Content
	index     *retrieval.Index
	retriever *retrieval.Retriever
	completer service.Completer
	prompts   *prompt.Registry
	opts      GeneratorOptions
}

// NewGenerator 创建生成器
func NewGenerator(
	content *entity.Content,
	index *retrieval.Index,
	retriever *retrieval.Retriever,
	completer service.Completer,
	prompts *prompt.Registry,
	opts GeneratorOptions,
) *Generator {
	// 0 是合法的确定性输出设置，只有负值才回退默认
	if opts.Temperature < 0 {
		opts.Temperature = defaultTemperature
	}
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	return &Generator{
		content:   content,
		index:     index,
		retriever: retriever,
		completer: completer,
		prompts:   prompts,
		opts:      opts,
	}
}

// Generate 生成回复，不返回错误
func (g *Generator) Generate(ctx context.Context, message string, in entity.Intent) (reply Reply) {
	start := time.Now()
	ctx = service.WithWorkflow(ctx, "chat."+string(in))
	ctx = logger.WithContext(ctx, logger.IntentKey, string(in))
	ctx, span := tracer.Start(ctx, "chat.generate")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "reply generation panicked", fmt.Errorf("%v", r))
			reply = g.fallback(in, ReasonPanic)
		}
		source := "grounded"
		if !reply.Grounded {
			source = reply.FallbackReason
		}
		span.SetAttributes(
			attribute.String("intent", string(in)),
			attribute.String("source", source),
			attribute.Int("passages", len(reply.Passages)),
		)
		metrics.ChatRepliesTotal.WithLabelValues(string(in), source).Inc()
		metrics.ChatGenerateDuration.WithLabelValues(string(in)).Observe(time.Since(start).Seconds())
	}()

	if g.completer == nil || !g.completer.Configured() {
		logger.Debug(ctx, "completion not configured, using fallback")
		return g.fallback(in, ReasonCompletionUnconfigured)
	}

	params := intent.ParamsFor(in)

	if err := g.index.EnsureReady(ctx); err != nil {
		if errors.Is(err, retrieval.ErrEmbedderUnavailable) {
			logger.Debug(ctx, "embedding not configured, using fallback")
		} else {
			logger.Warn(ctx, "embeddings index unavailable, using fallback", "error", err.Error())
		}
		return g.fallback(in, ReasonIndexUnavailable)
	}

	passages, err := g.retriever.Retrieve(ctx, message, params.TopK)
	if err != nil {
		logger.Warn(ctx, "retrieval failed, using fallback", "error", err.Error())
		return g.fallback(in, ReasonRetrievalFailed)
	}
	metrics.ChatRetrievedPassages.Observe(float64(len(passages)))

	req, err := g.buildRequest(ctx, message, passages, params.MaxTokens)
	if err != nil {
		logger.Error(ctx, "failed to render prompt", err)
		return g.fallback(in, ReasonPromptFailed)
	}

	text, err := g.completer.Complete(ctx, req)
	if err != nil {
		reason := ReasonCompletionFailed
		if apperrors.HasCode(err, apperrors.CodeServiceUnavailable) {
			reason = ReasonCircuitOpen
		}
		logger.Warn(ctx, "completion failed, using fallback", "reason", reason, "error", err.Error())
		return g.fallback(in, reason)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{
			Text:           g.content.EmptyReply,
			FallbackReason: ReasonEmptyCompletion,
			Passages:       passages,
		}
	}

	return Reply{Text: text, Grounded: true, Passages: passages}
}

func (g *Generator) fallback(in entity.Intent, reason string) Reply {
	return Reply{Text: g.content.Fallback(in), FallbackReason: reason}
}

// buildRequest 渲染 Prompt 模板
func (g *Generator) buildRequest(ctx context.Context, message string, passages []entity.Passage, maxTokens int) (service.CompletionRequest, error) {
	persona := g.content.Persona
	shortName := persona.ShortName
	if shortName == "" {
		shortName = persona.Name
	}

	rendered, err := g.prompts.Render(ctx, prompt.PromptPortfolioChatV1, map[string]any{
		"subject":    persona.Name,
		"short_name": shortName,
		"context":    retrieval.BuildPromptContext(passages, 0),
		"message":    message,
	})
	if err != nil {
		return service.CompletionRequest{}, err
	}

	return service.CompletionRequest{
		System:      rendered.System,
		User:        rendered.User,
		MaxTokens:   maxTokens,
		Temperature: g.opts.Temperature,
	}, nil
}
