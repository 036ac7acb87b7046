package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat-api/internal/application/knowledge"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/internal/domain/service/servicetest"
	"portfolio-chat-api/internal/workflow/prompt"
	apperrors "portfolio-chat-api/pkg/errors"
)

func TestGenerate_UnconfiguredCompletion(t *testing.T) {
	emb, comp := unconfigured()
	f := newFixture(t, emb, comp)

	reply := f.generator.Generate(context.Background(), "hey!", entity.IntentGreeting)

	assert.Equal(t, f.content.Fallback(entity.IntentGreeting), reply.Text)
	assert.False(t, reply.Grounded)
	assert.Equal(t, ReasonCompletionUnconfigured, reply.FallbackReason)
	assert.Equal(t, 0, emb.Calls())
	assert.Equal(t, 0, comp.Calls())
}

func TestGenerate_FallbackForEveryIntent(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	comp := servicetest.NewFailingCompleter(errors.New("model overloaded"))
	f := newFixture(t, emb, comp)

	for _, in := range entity.AllIntents() {
		t.Run(string(in), func(t *testing.T) {
			reply := f.generator.Generate(context.Background(), "anything at all", in)
			assert.Equal(t, f.content.Fallback(in), reply.Text)
			assert.NotEmpty(t, reply.Text)
			assert.False(t, reply.Grounded)
			assert.Equal(t, ReasonCompletionFailed, reply.FallbackReason)
		})
	}
	// 索引只构建一次，之后每次只做查询向量化
	assert.Equal(t, 1+len(entity.AllIntents()), emb.Calls())
}

func TestGenerate_GroundedProjects(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	comp := servicetest.NewEchoCompleter()
	f := newFixture(t, emb, comp)

	reply := f.generator.Generate(context.Background(), "what projects have you built?", entity.IntentProjects)

	require.True(t, reply.Grounded)
	assert.Empty(t, reply.FallbackReason)
	assert.Contains(t, reply.Text, "Portfolio Website")
	assert.Len(t, reply.Passages, 12)

	req := comp.LastRequest()
	assert.Equal(t, 1200, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Contains(t, req.System, "You are Brian Seo having a friendly conversation")
	assert.Contains(t, req.System, "[1] ")
	assert.Equal(t, "what projects have you built?", req.User)
}

func TestGenerate_CircuitOpen(t *testing.T) {
	comp := servicetest.NewFailingCompleter(apperrors.New(apperrors.CodeServiceUnavailable, "circuit breaker is open"))
	f := newFixture(t, servicetest.NewKeywordEmbedder(), comp)

	reply := f.generator.Generate(context.Background(), "skills?", entity.IntentSkills)
	assert.Equal(t, f.content.Fallback(entity.IntentSkills), reply.Text)
	assert.Equal(t, ReasonCircuitOpen, reply.FallbackReason)
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	comp := &servicetest.Completer{CompleteFunc: func(context.Context, service.CompletionRequest) (string, error) {
		return "  \n ", nil
	}}
	f := newFixture(t, servicetest.NewKeywordEmbedder(), comp)

	reply := f.generator.Generate(context.Background(), "tell me about yourself", entity.IntentAbout)
	assert.Equal(t, "Sorry, I couldn't generate a response right now.", reply.Text)
	assert.Equal(t, ReasonEmptyCompletion, reply.FallbackReason)
	assert.False(t, reply.Grounded)
}

func TestGenerate_IndexBuildFailure(t *testing.T) {
	emb := &servicetest.Embedder{EmbedFunc: func(context.Context, []string) ([][]float64, error) {
		return nil, errors.New("invalid api key")
	}}
	comp := servicetest.NewEchoCompleter()
	f := newFixture(t, emb, comp)

	reply := f.generator.Generate(context.Background(), "projects", entity.IntentProjects)
	assert.Equal(t, f.content.Fallback(entity.IntentProjects), reply.Text)
	assert.Equal(t, ReasonIndexUnavailable, reply.FallbackReason)
	assert.Equal(t, 0, comp.Calls())
}

func TestGenerate_EmbedderUnconfigured(t *testing.T) {
	comp := servicetest.NewEchoCompleter()
	f := newFixture(t, &servicetest.Embedder{Unconfigured: true}, comp)

	reply := f.generator.Generate(context.Background(), "projects", entity.IntentProjects)
	assert.Equal(t, ReasonIndexUnavailable, reply.FallbackReason)
	assert.Equal(t, 0, comp.Calls())
}

func TestGenerate_QueryEmbeddingFailure(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		if len(texts) == 1 {
			return nil, errors.New("rate limited")
		}
		return servicetest.KeywordVectors(servicetest.DefaultVocab, texts), nil
	}
	comp := servicetest.NewEchoCompleter()
	f := newFixture(t, emb, comp)

	reply := f.generator.Generate(context.Background(), "contact", entity.IntentContact)
	assert.Equal(t, f.content.Fallback(entity.IntentContact), reply.Text)
	assert.Equal(t, ReasonRetrievalFailed, reply.FallbackReason)
	assert.Equal(t, 0, comp.Calls())
}

func TestGenerate_RecoversPanic(t *testing.T) {
	comp := &servicetest.Completer{CompleteFunc: func(context.Context, service.CompletionRequest) (string, error) {
		panic("boom")
	}}
	f := newFixture(t, servicetest.NewKeywordEmbedder(), comp)

	var reply Reply
	require.NotPanics(t, func() {
		reply = f.generator.Generate(context.Background(), "hobbies", entity.IntentFun)
	})
	assert.Equal(t, f.content.Fallback(entity.IntentFun), reply.Text)
	assert.Equal(t, ReasonPanic, reply.FallbackReason)
}

func TestGenerate_Temperature(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"zero kept", 0, 0},
		{"configured", 0.7, 0.7},
		{"negative uses default", -1, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := knowledge.LoadContent("")
			require.NoError(t, err)
			emb := servicetest.NewKeywordEmbedder()
			comp := servicetest.NewEchoCompleter()
			index := retrieval.NewIndex(knowledge.NewCorpus(content), emb, retrieval.IndexOptions{})
			gen := NewGenerator(content, index, retrieval.NewRetriever(index), comp, prompt.NewRegistry(),
				GeneratorOptions{Temperature: tt.in})

			reply := gen.Generate(context.Background(), "what projects have you built?", entity.IntentProjects)
			require.True(t, reply.Grounded)
			assert.InDelta(t, tt.want, comp.LastRequest().Temperature, 1e-6)
		})
	}
}
