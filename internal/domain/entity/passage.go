package entity

// PassageKind 段落来源类别，仅用于诊断，不参与排序
type PassageKind string

const (
	PassageKindBio            PassageKind = "bio"
	PassageKindHighlights     PassageKind = "highlights"
	PassageKindSkills         PassageKind = "skills"
	PassageKindAllSkills      PassageKind = "all_skills"
	PassageKindProject        PassageKind = "project"
	PassageKindProjectSummary PassageKind = "project_summary"
	PassageKindContact        PassageKind = "contact"
	PassageKindPersonal       PassageKind = "personal"
	PassageKindEducation      PassageKind = "education"
)

// Passage 知识库中的一段文本
// 在有序切片中的位置即其身份，也是与向量的关联键
type Passage struct {
	Kind PassageKind `json:"kind"`
	Text string      `json:"text"`
}

// Texts 提取段落文本，保持顺序
func Texts(passages []Passage) []string {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p.Text
	}
	return out
}
