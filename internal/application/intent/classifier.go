// Package intent 基于规则的意图分类
package intent

import (
	"regexp"
	"strings"

	"portfolio-chat-api/internal/domain/entity"
)

// rule 一条分类规则；按顺序匹配，先命中者胜出
type rule struct {
	intent entity.Intent
	match  func(s string) bool
}

func words(pattern string) func(string) bool {
	re := regexp.MustCompile(`\b(?:` + pattern + `)\b`)
	return re.MatchString
}

// 规则顺序属于对外契约：问候最先，经历/教育先于项目。
// "I did a hackathon project" 归为 experience 而不是 projects。
var rules = []rule{
	{entity.IntentGreeting, greeting},
	{entity.IntentAbout, words(`who|introduce|bio|background|yourself|about\s+you|tell\s+me\s+about`)},
	{entity.IntentExperience, words(`experience|internships?|roles|education|university|uci|irvine|student|academic|hackathons?`)},
	{entity.IntentProjects, words(`projects?|built|made|developed|created|portfolio|app|website|platform|rentspiracy|rent-spiracy|fabflix|decurb`)},
	{entity.IntentSkills, words(`skills?|tech|stack|technologies|tools|languages|programming|frameworks?|react|next\.?js|python|java|javascript|typescript|html|css|mongodb|mysql|postgresql|docker|kubernetes|aws`)},
	{entity.IntentContact, words(`contact|email|reach|hire|connect|linkedin|github|resume`)},
	{entity.IntentFun, words(`hobby|hobbies|fun|interests|personal|like|enjoy|free\s+time|outside\s+work`)},
	{entity.IntentOffTopic, words(`weather|capital|stocks|math|recipe|define|news|politics|sports|cooking|music|movie|book`)},
}

var greetingWords = words(`hi|hello|hey|hola|bonjour|guten\s+tag|ciao|konnichiwa|annyeonghaseyo|namaste|howdy|sup|what'?s\s+up|good\s+(?:morning|afternoon|evening)|hey\s+(?:there|man)|heyy+|yo`)

// greeting RE2 的 \b 只识别 ASCII 单词边界，韩文问候单独按子串匹配
func greeting(s string) bool {
	return greetingWords(s) || strings.Contains(s, "안녕")
}

// Classify 返回文本的意图，纯函数，无匹配时返回 fallback
func Classify(text string) entity.Intent {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, r := range rules {
		if r.match(s) {
			return r.intent
		}
	}
	return entity.IntentFallback
}
