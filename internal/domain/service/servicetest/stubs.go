// Package servicetest 提供 Embedder / Completer 的测试替身
package servicetest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"portfolio-chat-api/internal/domain/service"
)

// DefaultVocab 关键词向量的默认词表
var DefaultVocab = []string{"portfolio", "project", "skill", "contact", "education", "hobby", "bio"}

// Embedder 可计数的 Embedder 替身
// EmbedFunc 为空时按 Vocab 生成关键词计数向量
type Embedder struct {
	EmbedFunc    func(ctx context.Context, texts []string) ([][]float64, error)
	Vocab        []string
	Unconfigured bool

	calls atomic.Int64
}

var _ service.Embedder = (*Embedder)(nil)

// NewKeywordEmbedder 创建按关键词计数的 Embedder
func NewKeywordEmbedder(vocab ...string) *Embedder {
	if len(vocab) == 0 {
		vocab = DefaultVocab
	}
	return &Embedder{Vocab: vocab}
}

func (e *Embedder) Configured() bool { return !e.Unconfigured }

func (e *Embedder) Provider() string { return "stub" }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	e.calls.Add(1)
	if e.EmbedFunc != nil {
		return e.EmbedFunc(ctx, texts)
	}
	return KeywordVectors(e.Vocab, texts), nil
}

// Calls 返回 Embed 被调用的次数
func (e *Embedder) Calls() int {
	return int(e.calls.Load())
}

// KeywordVectors 每一维是对应词在小写文本中出现的次数
func KeywordVectors(vocab, texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		v := make([]float64, len(vocab))
		for j, w := range vocab {
			v[j] = float64(strings.Count(lower, w))
		}
		out[i] = v
	}
	return out
}

// Completer 可计数的 Completer 替身
// CompleteFunc 为空时回显 System 和 User
type Completer struct {
	CompleteFunc func(ctx context.Context, req service.CompletionRequest) (string, error)
	Unconfigured bool

	calls atomic.Int64
	mu    sync.Mutex
	last  service.CompletionRequest
}

var _ service.Completer = (*Completer)(nil)

// NewEchoCompleter 创建回显 Completer
func NewEchoCompleter() *Completer {
	return &Completer{}
}

// NewFailingCompleter 创建总是返回 err 的 Completer
func NewFailingCompleter(err error) *Completer {
	return &Completer{CompleteFunc: func(context.Context, service.CompletionRequest) (string, error) {
		return "", err
	}}
}

func (c *Completer) Configured() bool { return !c.Unconfigured }

func (c *Completer) Provider() string { return "stub" }

func (c *Completer) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.last = req
	c.mu.Unlock()

	if c.CompleteFunc != nil {
		return c.CompleteFunc(ctx, req)
	}
	return req.System + "\n\n" + req.User, nil
}

// Calls 返回 Complete 被调用的次数
func (c *Completer) Calls() int {
	return int(c.calls.Load())
}

// LastRequest 返回最近一次请求
func (c *Completer) LastRequest() service.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
