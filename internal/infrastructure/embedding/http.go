package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
)

const defaultHTTPModel = "BAAI/bge-m3"

// HTTPEmbedder 调用自建 embedding 服务（如 TEI、bge 服务）
//
// 协议: POST {base_url}/embed {"texts": [...], "model": "..."}
// 返回 {"embeddings": [[...], ...], "tokens_used": n}
type HTTPEmbedder struct {
	endpoint   string
	apiKey     string
	model      string
	batchSize  int
	httpClient *http.Client
}

var _ service.Embedder = (*HTTPEmbedder)(nil)

type embedRequest struct {
	Texts []string `json:"texts"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	TokensUsed int         `json:"tokens_used"`
}

func NewHTTPEmbedder(cfg config.EmbeddingConfig) *HTTPEmbedder {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	model := cfg.Model
	if model == "" {
		model = defaultHTTPModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEmbedder{
		endpoint:  cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     model,
		batchSize: batchSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured 自建服务以地址为准，api_key 可选
func (c *HTTPEmbedder) Configured() bool { return strings.TrimSpace(c.endpoint) != "" }

func (c *HTTPEmbedder) Provider() string { return "http" }

func (c *HTTPEmbedder) Embed(ctx context.Context, texts []string) (_ [][]float64, err error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	defer func() { observe(c.Provider(), len(texts), start, err) }()

	all := make([][]float64, 0, len(texts))
	for i := 0; i < len(texts); i += c.batchSize {
		end := min(i+c.batchSize, len(texts))

		resp, err := c.doBatchEmbed(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != end-i {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(resp.Embeddings), end-i)
		}
		for _, vec := range resp.Embeddings {
			all = append(all, toFloat64(vec))
		}
	}

	return all, nil
}

func (c *HTTPEmbedder) doBatchEmbed(ctx context.Context, texts []string) (*embedResponse, error) {
	reqBody, err := json.Marshal(&embedRequest{
		Texts: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	endpoint := strings.TrimRight(c.endpoint, "/")
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid embedding endpoint: %w", err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/embed"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding request failed: status=%d", httpResp.StatusCode)
	}

	var resp embedResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	return &resp, nil
}
