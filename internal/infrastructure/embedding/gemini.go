package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
)

const defaultGeminiModel = "gemini-embedding-001"

// GeminiEmbedder 基于 Google GenAI SDK 的 Embedder
type GeminiEmbedder struct {
	cfg config.EmbeddingConfig

	mu     sync.Mutex
	client *genai.Client
}

var _ service.Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder 创建 Gemini Embedder，不发起网络请求
func NewGeminiEmbedder(cfg config.EmbeddingConfig) *GeminiEmbedder {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	return &GeminiEmbedder{cfg: cfg}
}

func (e *GeminiEmbedder) Configured() bool { return e.cfg.APIKey != "" }

func (e *GeminiEmbedder) Provider() string { return "gemini" }

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	client, err := e.get(ctx)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := client.Models.EmbedContent(ctx, e.cfg.Model, contents, nil)
	observe(e.Provider(), len(texts), start, err)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = toFloat64(emb.Values)
	}
	return out, nil
}

func (e *GeminiEmbedder) get(ctx context.Context) (*genai.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	if !e.Configured() {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	e.client = client
	return client, nil
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
