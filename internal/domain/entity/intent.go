// Package entity 定义领域实体
package entity

// Intent 用户消息的意图分类
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentAbout      Intent = "about"
	IntentExperience Intent = "experience"
	IntentProjects   Intent = "projects"
	IntentSkills     Intent = "skills"
	IntentContact    Intent = "contact"
	IntentFun        Intent = "fun"
	IntentOffTopic   Intent = "off_topic"
	IntentFallback   Intent = "fallback"
)

// AllIntents 返回全部意图，顺序与分类规则一致
func AllIntents() []Intent {
	return []Intent{
		IntentGreeting,
		IntentAbout,
		IntentExperience,
		IntentProjects,
		IntentSkills,
		IntentContact,
		IntentFun,
		IntentOffTopic,
		IntentFallback,
	}
}

// IsValid 检查意图是否为已知值
func (i Intent) IsValid() bool {
	for _, known := range AllIntents() {
		if i == known {
			return true
		}
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}
