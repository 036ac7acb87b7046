package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
	apperrors "portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/metrics"
)

// GeminiCompleter 基于 Google GenAI SDK 的补全实现
// 不经过 Eino，指标在此直接记录
type GeminiCompleter struct {
	cfg config.ProviderConfig

	mu     sync.Mutex
	client *genai.Client
}

var _ service.Completer = (*GeminiCompleter)(nil)

func NewGeminiCompleter(cfg config.ProviderConfig) *GeminiCompleter {
	return &GeminiCompleter{cfg: cfg}
}

func (c *GeminiCompleter) Configured() bool { return c.cfg.APIKey != "" }

func (c *GeminiCompleter) Provider() string { return "gemini" }

func (c *GeminiCompleter) Complete(ctx context.Context, req service.CompletionRequest) (text string, err error) {
	client, err := c.get(ctx)
	if err != nil {
		return "", err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	workflow := service.WorkflowFromContext(ctx)
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.LLMCallTotal.WithLabelValues(workflow, c.Provider(), c.cfg.Model, status).Inc()
		metrics.LLMCallDuration.WithLabelValues(workflow, c.Provider(), c.cfg.Model).Observe(time.Since(start).Seconds())
	}()

	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}, gc)
	if err != nil {
		return "", apperrors.ErrLLMCallFailed.WithError(fmt.Errorf("gemini completion: %w", err))
	}

	if u := resp.UsageMetadata; u != nil {
		metrics.LLMTokensUsed.WithLabelValues(workflow, c.Provider(), c.cfg.Model, "prompt").Add(float64(u.PromptTokenCount))
		metrics.LLMTokensUsed.WithLabelValues(workflow, c.Provider(), c.cfg.Model, "completion").Add(float64(u.CandidatesTokenCount))
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (c *GeminiCompleter) get(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return client, nil
}
