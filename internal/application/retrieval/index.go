// Package retrieval 进程内 embedding 索引与余弦召回
package retrieval

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/pkg/logger"
	"portfolio-chat-api/pkg/metrics"
	"portfolio-chat-api/pkg/tracer"
)

const (
	buildKey            = "index"
	defaultBuildTimeout = 60 * time.Second
)

// IndexOptions 索引构建参数
type IndexOptions struct {
	// BuildTimeout 单次构建的总超时，包含重试
	BuildTimeout time.Duration
	// BuildRetries embedding 批量调用失败后的重试次数，0 表示不重试
	BuildRetries int
	// RetryInterval 首次重试前的等待时间
	RetryInterval time.Duration
}

// Index 惰性构建、构建后不可变的 embedding 索引
//
// 状态机 ABSENT -> BUILDING -> READY，失败或超时回到 ABSENT。
// 同一时刻最多一个 embedding 批量调用在途，并发调用方等待同一结果。
type Index struct {
	source   PassageSource
	embedder service.Embedder
	opts     IndexOptions

	mu      sync.Mutex
	state   State
	lastErr error

	group    singleflight.Group
	snapshot atomic.Pointer[Snapshot]
}

// NewIndex 创建索引，不触发构建
func NewIndex(source PassageSource, embedder service.Embedder, opts IndexOptions) *Index {
	if opts.BuildTimeout <= 0 {
		opts.BuildTimeout = defaultBuildTimeout
	}
	if opts.BuildRetries < 0 {
		opts.BuildRetries = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 200 * time.Millisecond
	}
	return &Index{
		source:   source,
		embedder: embedder,
		opts:     opts,
		state:    StateAbsent,
	}
}

// IsReady 非阻塞检查
func (x *Index) IsReady() bool {
	return x.snapshot.Load() != nil
}

// Snapshot 返回已就绪的索引，未就绪时返回 nil
func (x *Index) Snapshot() *Snapshot {
	return x.snapshot.Load()
}

// Embedder 返回构建索引所用的 Embedder，查询向量必须来自同一个实现
func (x *Index) Embedder() service.Embedder {
	return x.embedder
}

// Status 返回当前状态
func (x *Index) Status() IndexStatus {
	x.mu.Lock()
	defer x.mu.Unlock()

	st := IndexStatus{State: x.state}
	if snap := x.snapshot.Load(); snap != nil {
		st.State = StateReady
		st.Passages = len(snap.Passages)
		st.BuiltAt = snap.BuiltAt
	}
	if x.lastErr != nil {
		st.LastError = x.lastErr.Error()
	}
	return st
}

// EnsureReady 确保索引已构建
//
// 已就绪时立即返回。构建在独立于调用方取消信号的 context 中运行，
// 受 BuildTimeout 约束；调用方自身的 ctx 结束时只是停止等待，返回 ctx.Err()。
func (x *Index) EnsureReady(ctx context.Context) error {
	if x.IsReady() {
		return nil
	}
	if x.embedder == nil || !x.embedder.Configured() {
		return ErrEmbedderUnavailable
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := x.group.DoChan(buildKey, func() (any, error) {
		return nil, x.build(buildCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (x *Index) build(parent context.Context) (err error) {
	x.mu.Lock()
	if x.snapshot.Load() != nil {
		x.mu.Unlock()
		return nil
	}
	x.state = StateBuilding
	x.mu.Unlock()

	ctx, cancel := context.WithTimeout(parent, x.opts.BuildTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "retrieval.index.build")
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("index build panicked: %v", r)
		}
		x.finish(ctx, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	passages := x.source.Passages()
	span.SetAttributes(attribute.Int("passages", len(passages)))
	logger.Info(ctx, "building embeddings index", "passages", len(passages))

	vectors, err := x.embedAll(ctx, entity.Texts(passages))
	if err != nil {
		return err
	}

	x.snapshot.Store(&Snapshot{
		Passages: passages,
		Vectors:  vectors,
		BuiltAt:  time.Now().UTC(),
	})
	return nil
}

// finish 在锁内更新状态并记录指标
func (x *Index) finish(ctx context.Context, err error, elapsed time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()

	metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	if err != nil {
		x.state = StateAbsent
		x.lastErr = err
		metrics.IndexBuildsTotal.WithLabelValues("failure").Inc()
		logger.Error(ctx, "failed to build embeddings index", err, "duration_ms", elapsed.Milliseconds())
		return
	}

	x.state = StateReady
	x.lastErr = nil
	n := len(x.snapshot.Load().Passages)
	metrics.IndexBuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexPassages.Set(float64(n))
	logger.Info(ctx, "embeddings index built", "passages", n, "duration_ms", elapsed.Milliseconds())
}

// embedAll 一次批量调用向量化全部段落，失败时按指数退避重试
func (x *Index) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	var vectors [][]float64
	operation := func() error {
		out, err := x.embedder.Embed(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			logger.Warn(ctx, "embedding batch failed", "error", err.Error())
			return err
		}
		if len(out) != len(texts) {
			return backoff.Permanent(fmt.Errorf("%w: got %d, want %d", ErrVectorCountMismatch, len(out), len(texts)))
		}
		vectors = out
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = x.opts.RetryInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(x.opts.BuildRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("embed %d passages: %w", len(texts), err)
	}
	return vectors, nil
}
