package entity

// Content 作品集内容表，是语料和兜底文案的唯一来源
type Content struct {
	Persona         Persona           `json:"persona" yaml:"persona"`
	SkillCategories []SkillCategory   `json:"skill_categories" yaml:"skill_categories"`
	Projects        []Project         `json:"projects" yaml:"projects"`
	Fallbacks       map[Intent]string `json:"fallbacks" yaml:"fallbacks"`
	// EmptyReply 模型返回空内容时的回复
	EmptyReply string `json:"empty_reply" yaml:"empty_reply"`
}

// Persona 作品集主人信息，均为第一人称表述
type Persona struct {
	Name       string   `json:"name" yaml:"name"`
	ShortName  string   `json:"short_name" yaml:"short_name"`
	Bio        string   `json:"bio" yaml:"bio"`
	Highlights []string `json:"highlights" yaml:"highlights"`
	Education  string   `json:"education" yaml:"education"`
	Contact    []string `json:"contact" yaml:"contact"`
	Personal   []string `json:"personal" yaml:"personal"`
}

// SkillCategory 技能分类
// 技能按表中顺序匹配第一个命中的分类，Keywords 需为小写
type SkillCategory struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// Project 作品集项目
type Project struct {
	Title         string   `json:"title" yaml:"title"`
	Name          string   `json:"name" yaml:"name"`
	Summary       string   `json:"summary" yaml:"summary"`
	Description   string   `json:"description" yaml:"description"`
	TechStack     []string `json:"tech_stack" yaml:"tech_stack"`
	Status        string   `json:"status" yaml:"status"`
	Year          string   `json:"year" yaml:"year"`
	DemoURL       string   `json:"demo_url,omitempty" yaml:"demo_url"`
	RepositoryURL string   `json:"repository_url,omitempty" yaml:"repository_url"`
}

// Fallback 返回意图对应的静态回复，未配置时使用 fallback 意图的文案
func (c *Content) Fallback(intent Intent) string {
	if c == nil {
		return ""
	}
	if text, ok := c.Fallbacks[intent]; ok && text != "" {
		return text
	}
	return c.Fallbacks[IntentFallback]
}
