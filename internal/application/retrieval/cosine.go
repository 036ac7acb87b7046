package retrieval

import (
	"math"
	"sort"
)

// LowestScore 零向量或维度不一致时的分数，排在所有有效分数之后
const LowestScore = -math.MaxFloat64

// Cosine 余弦相似度 dot/(|a||b|)
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return LowestScore
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return LowestScore
	}

	s := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return LowestScore
	}
	return s
}

type ranked struct {
	index int
	score float64
}

// rank 对全部向量打分并按分数降序稳定排序，同分保持语料顺序
// k 被限制在 [0, len(vectors)]
func rank(query []float64, vectors [][]float64, k int) []ranked {
	if k <= 0 || len(vectors) == 0 {
		return nil
	}
	if k > len(vectors) {
		k = len(vectors)
	}

	out := make([]ranked, len(vectors))
	for i, v := range vectors {
		out[i] = ranked{index: i, score: Cosine(query, v)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out[:k]
}
