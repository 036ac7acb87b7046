package knowledge

import (
	"fmt"
	"strings"

	"portfolio-chat-api/internal/domain/entity"
)

// Corpus 已加载的内容表及其派生段落
// 段落只在构造时生成一次，之后只读
type Corpus struct {
	content  *entity.Content
	passages []entity.Passage
}

// NewCorpus 基于内容表构造语料
func NewCorpus(content *entity.Content) *Corpus {
	return &Corpus{
		content:  content,
		passages: BuildPassages(content),
	}
}

// Content 返回内容表
func (c *Corpus) Content() *entity.Content {
	return c.content
}

// Passages 返回段落副本，顺序稳定
func (c *Corpus) Passages() []entity.Passage {
	out := make([]entity.Passage, len(c.passages))
	copy(out, c.passages)
	return out
}

// SkillGroup 一个技能分类及其命中的技能
type SkillGroup struct {
	Category entity.SkillCategory
	Skills   []string
}

// BuildPassages 将内容表转为检索段落
// 输出顺序：简介、亮点、分类技能、全部技能、项目（详情+摘要）、联系方式、个人兴趣、教育
func BuildPassages(c *entity.Content) []entity.Passage {
	if c == nil {
		return nil
	}

	var out []entity.Passage
	add := func(kind entity.PassageKind, format string, args ...any) {
		out = append(out, entity.Passage{Kind: kind, Text: fmt.Sprintf(format, args...)})
	}

	p := c.Persona
	if p.Bio != "" {
		add(entity.PassageKindBio, "BIO: %s", p.Bio)
	}
	if len(p.Highlights) > 0 {
		add(entity.PassageKindHighlights, "HIGHLIGHTS: %s", strings.Join(p.Highlights, "; "))
	}

	for _, g := range GroupSkills(c) {
		add(entity.PassageKindSkills, "MY SKILLS - %s: %s | %s",
			g.Category.Name, strings.Join(g.Skills, ", "), g.Category.Description)
	}
	if all := UniqueSkills(c.Projects); len(all) > 0 {
		add(entity.PassageKindAllSkills, "ALL MY SKILLS: %s", strings.Join(all, ", "))
	}

	for _, proj := range c.Projects {
		add(entity.PassageKindProject, "MY PROJECT: %s | Status: %s | Year: %s | Stack: %s | Description: %s",
			proj.Name, proj.Status, proj.Year, strings.Join(proj.TechStack, ", "), proj.Description)
		add(entity.PassageKindProjectSummary, "PROJECT SUMMARY: %s - %s", proj.Title, proj.Summary)
	}

	if len(p.Contact) > 0 {
		add(entity.PassageKindContact, "CONTACT: %s", strings.Join(p.Contact, ", "))
	}
	if len(p.Personal) > 0 {
		add(entity.PassageKindPersonal, "PERSONAL: %s", strings.Join(p.Personal, "; "))
	}
	if p.Education != "" {
		add(entity.PassageKindEducation, "MY EDUCATION: %s", p.Education)
	}

	return out
}

// UniqueSkills 汇总所有项目的技术栈，去重并保持首次出现的顺序
func UniqueSkills(projects []entity.Project) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, proj := range projects {
		for _, s := range proj.TechStack {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// GroupSkills 按分类归组技能，每个技能只进入第一个关键词命中的分类
// 没有技能的分类不返回；不命中任何分类的技能只出现在全部技能里
func GroupSkills(c *entity.Content) []SkillGroup {
	groups := make([]SkillGroup, len(c.SkillCategories))
	for i, cat := range c.SkillCategories {
		groups[i].Category = cat
	}

	for _, skill := range UniqueSkills(c.Projects) {
		lower := strings.ToLower(skill)
		for i, cat := range c.SkillCategories {
			if matchesAny(lower, cat.Keywords) {
				groups[i].Skills = append(groups[i].Skills, skill)
				break
			}
		}
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Skills) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
