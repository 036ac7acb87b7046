package intent

import "portfolio-chat-api/internal/domain/entity"

// Params 每个意图的检索宽度与生成预算
type Params struct {
	TopK      int
	MaxTokens int
}

var defaultParams = Params{TopK: 5, MaxTokens: 600}

// 项目类问题需要覆盖全部项目段落，问候只需少量上下文
var paramsByIntent = map[entity.Intent]Params{
	entity.IntentProjects:   {TopK: 12, MaxTokens: 1200},
	entity.IntentSkills:     {TopK: 6, MaxTokens: 700},
	entity.IntentAbout:      {TopK: 5, MaxTokens: 600},
	entity.IntentExperience: {TopK: 5, MaxTokens: 600},
	entity.IntentGreeting:   {TopK: 3, MaxTokens: 400},
	entity.IntentContact:    {TopK: 4, MaxTokens: 500},
	entity.IntentFun:        {TopK: 4, MaxTokens: 500},
}

// ParamsFor 返回意图的参数，未列出的意图使用默认值
func ParamsFor(i entity.Intent) Params {
	if p, ok := paramsByIntent[i]; ok {
		return p
	}
	return defaultParams
}
