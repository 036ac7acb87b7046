package dto

// ChatRequest 对话请求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse 对话响应，字段保持扁平以兼容前端组件
type ChatResponse struct {
	Reply     string `json:"reply"`
	Intent    string `json:"intent"`
	Timestamp string `json:"timestamp"`
}

// ChatErrorResponse 对话接口的错误响应
type ChatErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ChatStatusResponse GET /v1/chat 状态响应
type ChatStatusResponse struct {
	Status               string `json:"status"`
	CompletionConfigured bool   `json:"completion_configured"`
	EmbeddingConfigured  bool   `json:"embedding_configured"`
	IndexState           string `json:"index_state"`
	IndexInitialized     bool   `json:"index_initialized"`
	PassagesIndexed      int    `json:"passages_indexed"`
	VectorsReady         bool   `json:"vectors_ready"`
	IndexBuiltAt         string `json:"index_built_at,omitempty"`
	IndexLastError       string `json:"index_last_error,omitempty"`
}
