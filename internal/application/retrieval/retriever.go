package retrieval

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/pkg/logger"
	"portfolio-chat-api/pkg/tracer"
)

// Retriever 基于索引的余弦召回
type Retriever struct {
	index *Index
}

// NewRetriever 创建召回器，查询向量使用与索引相同的 Embedder
func NewRetriever(index *Index) *Retriever {
	return &Retriever{index: index}
}

// Retrieve 返回与 query 最相近的 k 个段落
// 索引未就绪时返回 (nil, nil)；查询向量化失败时返回错误
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]entity.Passage, error) {
	scored, err := r.Search(ctx, query, k)
	if err != nil || scored == nil {
		return nil, err
	}
	out := make([]entity.Passage, len(scored))
	for i, s := range scored {
		out[i] = entity.Passage{Kind: s.Kind, Text: s.Text}
	}
	return out, nil
}

// Search 与 Retrieve 相同，但保留分数和语料位置
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]ScoredPassage, error) {
	snap := r.index.Snapshot()
	if snap == nil {
		logger.Debug(ctx, "index not ready for retrieval")
		return nil, nil
	}
	if k <= 0 || len(snap.Passages) == 0 {
		return []ScoredPassage{}, nil
	}

	ctx, span := tracer.Start(ctx, "retrieval.search")
	defer span.End()
	span.SetAttributes(attribute.Int("top_k", k), attribute.Int("passages", len(snap.Passages)))

	vecs, err := r.index.Embedder().Embed(ctx, []string{query})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", ErrQueryEmbedding, len(vecs))
	}

	hits := rank(vecs[0], snap.Vectors, k)
	out := make([]ScoredPassage, len(hits))
	for i, h := range hits {
		p := snap.Passages[h.index]
		out[i] = ScoredPassage{Index: h.index, Kind: p.Kind, Text: p.Text, Score: h.score}
	}
	return out, nil
}
