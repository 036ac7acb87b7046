package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"portfolio-chat-api/internal/domain/service"
	apperrors "portfolio-chat-api/pkg/errors"
)

// EinoCompleter 通过 ChatModelSource 调用 OpenAI 兼容模型
// 调用指标由全局 Eino 回调统一记录
type EinoCompleter struct {
	models     ChatModelSource
	provider   string
	configured bool
}

var _ service.Completer = (*EinoCompleter)(nil)

func NewEinoCompleter(models ChatModelSource, provider string, configured bool) *EinoCompleter {
	return &EinoCompleter{models: models, provider: provider, configured: configured}
}

func (c *EinoCompleter) Configured() bool { return c.configured }

func (c *EinoCompleter) Provider() string { return c.provider }

func (c *EinoCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	cm, err := c.models.Get(ctx, c.provider)
	if err != nil {
		return "", err
	}

	ctx = service.WithProvider(ctx, c.provider)
	messages := []*schema.Message{
		schema.SystemMessage(req.System),
		schema.UserMessage(req.User),
	}

	opts := []model.Option{model.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	msg, err := cm.Generate(ctx, messages, opts...)
	if err != nil {
		return "", apperrors.ErrLLMCallFailed.WithError(fmt.Errorf("%s completion: %w", c.provider, err))
	}
	if msg == nil {
		return "", nil
	}
	return strings.TrimSpace(msg.Content), nil
}
