package retrieval

import "errors"

var (
	// ErrEmbedderUnavailable 未配置 embedding 能力，索引无法构建
	ErrEmbedderUnavailable = errors.New("embedder is not configured")
	// ErrVectorCountMismatch embedding 返回的向量数与段落数不一致
	ErrVectorCountMismatch = errors.New("embedding count does not match passage count")
	// ErrQueryEmbedding 查询向量化失败
	ErrQueryEmbedding = errors.New("query embedding failed")
)
