package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service/servicetest"
	"portfolio-chat-api/internal/interfaces/http/dto"
)

func newChatEngine(h *ChatHandler) *gin.Engine {
	r := gin.New()
	r.POST("/v1/chat", h.Chat)
	r.GET("/v1/chat", h.Status)
	return r
}

func TestChat_RejectsMalformedInput(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	comp := servicetest.NewEchoCompleter()
	svc, _ := newChatService(t, emb, comp)
	r := newChatEngine(NewChatHandler(svc))

	bodies := []string{
		"",
		"not json",
		`{}`,
		`{"message": 42}`,
		`{"message": ""}`,
		`{"message": "   "}`,
	}
	for _, body := range bodies {
		w := doJSON(r, http.MethodPost, "/v1/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, "Message is required", decode[dto.ChatErrorResponse](t, w).Error)
	}

	assert.Zero(t, emb.Calls())
	assert.Zero(t, comp.Calls())
}

func TestChat_TooLong(t *testing.T) {
	emb, comp := servicetest.NewKeywordEmbedder(), servicetest.NewEchoCompleter()
	svc, _ := newChatService(t, emb, comp)
	r := newChatEngine(NewChatHandler(svc))

	w := doJSON(r, http.MethodPost, "/v1/chat", `{"message": "`+strings.Repeat("a", 51)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message is too long", decode[dto.ChatErrorResponse](t, w).Error)
	assert.Zero(t, comp.Calls())
}

func TestChat_UnconfiguredFallsBack(t *testing.T) {
	emb := &servicetest.Embedder{Unconfigured: true}
	comp := &servicetest.Completer{Unconfigured: true}
	svc, content := newChatService(t, emb, comp)
	r := newChatEngine(NewChatHandler(svc))

	w := doJSON(r, http.MethodPost, "/v1/chat", `{"message": "hey!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ChatResponse](t, w)
	assert.Equal(t, "greeting", resp.Intent)
	assert.Equal(t, content.Fallback(entity.IntentGreeting), resp.Reply)

	ts, err := time.Parse(time.RFC3339, resp.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
	assert.True(t, strings.HasSuffix(resp.Timestamp, "Z"))
}

func TestChat_GroundedReply(t *testing.T) {
	svc, _ := newChatService(t, servicetest.NewKeywordEmbedder(), servicetest.NewEchoCompleter())
	r := newChatEngine(NewChatHandler(svc))

	w := doJSON(r, http.MethodPost, "/v1/chat", `{"message": "what projects have you built?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ChatResponse](t, w)
	assert.Equal(t, "projects", resp.Intent)
	assert.Contains(t, resp.Reply, "Portfolio")
}

func TestChat_Status(t *testing.T) {
	svc, _ := newChatService(t, servicetest.NewKeywordEmbedder(), servicetest.NewEchoCompleter())
	r := newChatEngine(NewChatHandler(svc))

	st := decode[dto.ChatStatusResponse](t, doJSON(r, http.MethodGet, "/v1/chat", ""))
	assert.Equal(t, "ok", st.Status)
	assert.True(t, st.CompletionConfigured)
	assert.True(t, st.EmbeddingConfigured)
	assert.Equal(t, "absent", st.IndexState)
	assert.False(t, st.IndexInitialized)
	assert.Zero(t, st.PassagesIndexed)

	// 第一次对话触发建索引
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/v1/chat", `{"message": "tell me about your skills"}`).Code)

	st = decode[dto.ChatStatusResponse](t, doJSON(r, http.MethodGet, "/v1/chat", ""))
	assert.Equal(t, "ready", st.IndexState)
	assert.True(t, st.IndexInitialized)
	assert.True(t, st.VectorsReady)
	assert.Equal(t, len(svc.Passages()), st.PassagesIndexed)
	assert.NotEmpty(t, st.IndexBuiltAt)
}
