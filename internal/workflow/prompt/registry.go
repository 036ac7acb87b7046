// Package prompt 管理内嵌的 Prompt 模板
package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// PromptID 模板标识，对应 templates/<id>.system.txt 与 templates/<id>.user.txt
type PromptID string

const (
	// PromptPortfolioChatV1 基于召回上下文的第一人称作品集问答
	// 变量：subject, short_name, context, message
	PromptPortfolioChatV1 PromptID = "portfolio_chat_v1"
)

var knownPrompts = map[PromptID]struct{}{
	PromptPortfolioChatV1: {},
}

// Rendered 渲染后的一轮对话输入
type Rendered struct {
	System string
	User   string
}

// Registry 按需解析并缓存模板
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

// Render 用 vars 渲染模板，按角色拆出 system 与 user 文本
// 变量值中的花括号原样保留，不会被再次解析
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) (Rendered, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return Rendered{}, err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("render prompt %s: %w", id, err)
	}

	var out Rendered
	for _, m := range msgs {
		switch m.Role {
		case schema.System:
			out.System = m.Content
		case schema.User:
			out.User = m.Content
		}
	}
	return out, nil
}

// ChatTemplate 返回 system+user 两条消息组成的 FString 模板
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	tpl, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	if _, ok := knownPrompts[id]; !ok {
		return nil, fmt.Errorf("unknown prompt id: %s", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	system, err := readTemplate(id, "system")
	if err != nil {
		return nil, err
	}
	user, err := readTemplate(id, "user")
	if err != nil {
		return nil, err
	}

	tpl = einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func readTemplate(id PromptID, role string) (string, error) {
	path := fmt.Sprintf("templates/%s.%s.txt", id, role)
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
