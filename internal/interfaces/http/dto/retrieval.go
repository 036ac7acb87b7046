package dto

// DebugRetrievalRequest 调试检索请求
type DebugRetrievalRequest struct {
	Query string `json:"query" binding:"required,max=2000"`
	// TopK 为 0 时按查询意图取默认值
	TopK int `json:"top_k,omitempty" binding:"min=0,max=50"`
}

// DebugRetrievalResponse 调试检索响应
type DebugRetrievalResponse struct {
	Query      string           `json:"query"`
	Intent     string           `json:"intent"`
	TopK       int              `json:"top_k"`
	Passages   []*ScoredPassage `json:"passages"`
	DurationMs int64            `json:"duration_ms"`
}

// ScoredPassage 带分数的召回段落
type ScoredPassage struct {
	Index int     `json:"index"`
	Kind  string  `json:"kind"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
