package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio-chat-api/internal/domain/entity"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want entity.Intent
	}{
		{"english greeting", "hey!", entity.IntentGreeting},
		{"elongated greeting", "heyyy", entity.IntentGreeting},
		{"french greeting", "Bonjour", entity.IntentGreeting},
		{"korean greeting", "안녕하세요", entity.IntentGreeting},
		{"whats up", "what's up", entity.IntentGreeting},
		{"good evening", "Good evening!", entity.IntentGreeting},
		{"who are you", "Who are you?", entity.IntentAbout},
		{"about yourself", "Tell me about yourself", entity.IntentAbout},
		{"who is", "Who is Brian?", entity.IntentAbout},
		{"tell me about name", "Tell me about Brian", entity.IntentAbout},
		{"background", "What's your background?", entity.IntentAbout},
		{"introduce name", "Can you introduce Brian?", entity.IntentAbout},
		{"introduce yourself", "Introduce yourself", entity.IntentAbout},
		{"bare about stays narrow", "what is this site about", entity.IntentFallback},
		{"education", "Where do you go to university?", entity.IntentExperience},
		{"hackathon project", "I did a hackathon project", entity.IntentExperience},
		{"projects", "what projects have you built?", entity.IntentProjects},
		{"project name", "Explain Rent-spiracy", entity.IntentProjects},
		{"tech stack", "What's your tech stack?", entity.IntentSkills},
		{"technology name", "Have you used Docker?", entity.IntentSkills},
		{"bare tech", "What tech do you use?", entity.IntentSkills},
		{"bare stack", "Which stack do you prefer?", entity.IntentSkills},
		{"contact", "How can I contact you?", entity.IntentContact},
		{"fun", "What do you do for fun?", entity.IntentFun},
		{"fun before off topic", "Do you like music?", entity.IntentFun},
		{"off topic", "What's the weather today?", entity.IntentOffTopic},
		{"nothing", "asdfgh", entity.IntentFallback},
		{"empty", "", entity.IntentFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	// 经历关键词先于项目关键词
	assert.Equal(t, entity.IntentExperience, Classify("I joined a hackathon and built a website"))
	// 问候先于其它所有规则
	assert.Equal(t, entity.IntentGreeting, Classify("hello, what projects have you made?"))
	// 单词边界：you 不会被当作 yo
	assert.NotEqual(t, entity.IntentGreeting, Classify("you"))
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, entity.IntentSkills, Classify("Do you know Python?"))
	}
}

func TestParamsFor(t *testing.T) {
	assert.Equal(t, Params{TopK: 12, MaxTokens: 1200}, ParamsFor(entity.IntentProjects))
	assert.Equal(t, Params{TopK: 3, MaxTokens: 400}, ParamsFor(entity.IntentGreeting))
	assert.Equal(t, Params{TopK: 5, MaxTokens: 600}, ParamsFor(entity.IntentOffTopic))
	assert.Equal(t, Params{TopK: 5, MaxTokens: 600}, ParamsFor(entity.IntentFallback))

	assert.Greater(t, ParamsFor(entity.IntentProjects).TopK, ParamsFor(entity.IntentGreeting).TopK)
}
