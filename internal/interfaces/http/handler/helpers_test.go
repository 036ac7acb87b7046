package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"portfolio-chat-api/internal/application/chat"
	"portfolio-chat-api/internal/application/knowledge"
	"portfolio-chat-api/internal/application/retrieval"
	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/internal/workflow/prompt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newChatService(t *testing.T, emb service.Embedder, comp service.Completer) (*chat.Service, *entity.Content) {
	t.Helper()

	content, err := knowledge.LoadContent("")
	require.NoError(t, err)
	corpus := knowledge.NewCorpus(content)

	index := retrieval.NewIndex(corpus, emb, retrieval.IndexOptions{BuildTimeout: 5 * time.Second})
	retriever := retrieval.NewRetriever(index)
	gen := chat.NewGenerator(content, index, retriever, comp, prompt.NewRegistry(), chat.GeneratorOptions{Temperature: 0.3})
	return chat.NewService(corpus, index, retriever, gen, emb, comp, chat.Options{MaxMessageRunes: 50}), content
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
