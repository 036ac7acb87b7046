package retrieval

import (
	"fmt"
	"strings"

	"portfolio-chat-api/internal/domain/entity"
)

const defaultMaxRunesPerPassage = 1500

// BuildPromptContext 将召回段落格式化为可直接注入 Prompt 的编号块
// 不带分数等调试信息
func BuildPromptContext(passages []entity.Passage, maxRunesPerPassage int) string {
	if len(passages) == 0 {
		return ""
	}
	if maxRunesPerPassage <= 0 {
		maxRunesPerPassage = defaultMaxRunesPerPassage
	}

	lines := make([]string, 0, len(passages))
	n := 0
	for _, p := range passages {
		txt := truncateRunes(compactOneLine(p.Text), maxRunesPerPassage)
		if txt == "" {
			continue
		}
		n++
		lines = append(lines, fmt.Sprintf("[%d] %s", n, txt))
	}
	return strings.Join(lines, "\n")
}

func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
