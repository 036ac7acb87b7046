package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-chat-api/internal/application/knowledge"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/internal/domain/service/servicetest"
	"portfolio-chat-api/internal/workflow/prompt"
)

type fixture struct {
	content   *entity.Content
	index     *retrieval.Index
	generator *Generator
	service   *Service
}

func newFixture(t *testing.T, emb service.Embedder, comp service.Completer) *fixture {
	t.Helper()

	content, err := knowledge.LoadContent("")
	require.NoError(t, err)
	corpus := knowledge.NewCorpus(content)

	index := retrieval.NewIndex(corpus, emb, retrieval.IndexOptions{BuildTimeout: 5 * time.Second})
	retriever := retrieval.NewRetriever(index)
	gen := NewGenerator(content, index, retriever, comp, prompt.NewRegistry(), GeneratorOptions{Temperature: 0.3})
	svc := NewService(corpus, index, retriever, gen, emb, comp, Options{MaxMessageRunes: 2000})

	return &fixture{content: content, index: index, generator: gen, service: svc}
}

func unconfigured() (*servicetest.Embedder, *servicetest.Completer) {
	return &servicetest.Embedder{Unconfigured: true}, &servicetest.Completer{Unconfigured: true}
}
