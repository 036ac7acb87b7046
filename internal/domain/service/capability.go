// Package service 定义跨层的领域端口
package service

import "context"

// Embedder 文本向量化能力
// 同一进程内所有向量必须来自同一个 Embedder，否则不可比较
type Embedder interface {
	// Configured 凭证缺失时返回 false，调用方应直接走降级路径
	Configured() bool
	// Embed 批量向量化，返回与输入等长、同序的向量
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// CompletionRequest 一次对话补全请求
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer 对话补全能力
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Named 可选接口，用于日志和指标中标识提供商
type Named interface {
	Provider() string
}

// ProviderName 返回能力实现的提供商名，未实现 Named 时返回 "unknown"
func ProviderName(v any) string {
	if n, ok := v.(Named); ok {
		return n.Provider()
	}
	return "unknown"
}
