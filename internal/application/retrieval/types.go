package retrieval

import (
	"time"

	"portfolio-chat-api/internal/domain/entity"
)

// State 索引生命周期状态
type State string

const (
	StateAbsent   State = "absent"
	StateBuilding State = "building"
	StateReady    State = "ready"
)

// PassageSource 索引的段落来源
type PassageSource interface {
	Passages() []entity.Passage
}

// Snapshot 构建完成的只读索引
// Vectors[i] 是 Passages[i] 的向量，两者长度一致
type Snapshot struct {
	Passages []entity.Passage
	Vectors  [][]float64
	BuiltAt  time.Time
}

// IndexStatus 索引状态摘要，用于状态接口和就绪检查
type IndexStatus struct {
	State     State     `json:"state"`
	Passages  int       `json:"passages"`
	BuiltAt   time.Time `json:"built_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// ScoredPassage 带相似度分数的召回结果
type ScoredPassage struct {
	Index int                `json:"index"`
	Kind  entity.PassageKind `json:"kind"`
	Text  string             `json:"text"`
	Score float64            `json:"score"`
}
