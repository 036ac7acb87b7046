// Package knowledge 加载作品集内容表并生成检索语料
package knowledge

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolio-chat-api/internal/domain/entity"
)

//go:embed content/portfolio.yaml
var defaultContentYAML []byte

// ErrInvalidContent 内容表缺少必填字段
var ErrInvalidContent = errors.New("invalid content table")

// DefaultContent 解析内置内容表
func DefaultContent() (*entity.Content, error) {
	return parseContent(defaultContentYAML)
}

// LoadContent 加载内容表；path 为空时使用内置内容
// 外部文件缺失的兜底文案由内置内容补齐
func LoadContent(path string) (*entity.Content, error) {
	def, err := DefaultContent()
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded content: %w", err)
	}
	if strings.TrimSpace(path) == "" {
		return def, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file %s: %w", path, err)
	}
	c, err := parseContent(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}

	fillFallbacks(c, def)
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func parseContent(raw []byte) (*entity.Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var c entity.Content
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	normalize(&c)
	return &c, nil
}

// normalize 关键词统一小写，去掉首尾空白
func normalize(c *entity.Content) {
	for i := range c.SkillCategories {
		kws := c.SkillCategories[i].Keywords
		for j := range kws {
			kws[j] = strings.ToLower(strings.TrimSpace(kws[j]))
		}
	}
	for i := range c.Projects {
		for j := range c.Projects[i].TechStack {
			c.Projects[i].TechStack[j] = strings.TrimSpace(c.Projects[i].TechStack[j])
		}
	}
}

func fillFallbacks(c, def *entity.Content) {
	if c.Fallbacks == nil {
		c.Fallbacks = make(map[entity.Intent]string, len(def.Fallbacks))
	}
	for intent, text := range def.Fallbacks {
		if strings.TrimSpace(c.Fallbacks[intent]) == "" {
			c.Fallbacks[intent] = text
		}
	}
	if strings.TrimSpace(c.EmptyReply) == "" {
		c.EmptyReply = def.EmptyReply
	}
}

func validate(c *entity.Content) error {
	if strings.TrimSpace(c.Persona.Name) == "" {
		return fmt.Errorf("%w: persona.name is required", ErrInvalidContent)
	}
	for intent := range c.Fallbacks {
		if !intent.IsValid() {
			return fmt.Errorf("%w: unknown fallback intent %q", ErrInvalidContent, intent)
		}
	}
	for i, cat := range c.SkillCategories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("%w: skill_categories[%d].name is required", ErrInvalidContent, i)
		}
	}
	for i, p := range c.Projects {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: projects[%d].name is required", ErrInvalidContent, i)
		}
	}
	return nil
}
