package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	einoembedding "github.com/cloudwego/eino/components/embedding"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/pkg/metrics"
)

const defaultOpenAIModel = "text-embedding-3-small"

// EinoEmbedder 基于 Eino OpenAI 适配器的 Embedder，首次调用时创建客户端
type EinoEmbedder struct {
	cfg config.EmbeddingConfig

	mu     sync.Mutex
	client einoembedding.Embedder
}

var _ service.Embedder = (*EinoEmbedder)(nil)

// NewEinoEmbedder 创建 Eino Embedder，不发起网络请求
func NewEinoEmbedder(cfg config.EmbeddingConfig) *EinoEmbedder {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	return &EinoEmbedder{cfg: cfg}
}

func (e *EinoEmbedder) Configured() bool { return e.cfg.APIKey != "" }

func (e *EinoEmbedder) Provider() string { return "openai" }

func (e *EinoEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	client, err := e.get(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vecs, err := client.EmbedStrings(ctx, texts)
	observe(e.Provider(), len(texts), start, err)
	if err != nil {
		return nil, fmt.Errorf("eino embed: %w", err)
	}
	return vecs, nil
}

// get 惰性创建客户端，双重检查避免重复初始化
func (e *EinoEmbedder) get(ctx context.Context) (einoembedding.Embedder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	if !e.Configured() {
		return nil, ErrNotConfigured
	}

	client, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  e.cfg.APIKey,
		BaseURL: e.cfg.BaseURL,
		Model:   e.cfg.Model,
		Timeout: e.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}
	e.client = client
	return client, nil
}

// observe 记录 embedding 调用指标
func observe(provider string, n int, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EmbeddingCallTotal.WithLabelValues(provider, status).Inc()
	metrics.EmbeddingCallDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	metrics.EmbeddingTexts.WithLabelValues(provider).Observe(float64(n))
}
