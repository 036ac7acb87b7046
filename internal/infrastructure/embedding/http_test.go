package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat-api/internal/config"
)

func TestHTTPEmbedder_BatchesRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultHTTPModel, req.Model)

		resp := embedResponse{}
		for _, text := range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(len(text)), 1})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, APIKey: "secret", BatchSize: 2})
	require.True(t, e.Configured())

	vecs, err := e.Embed(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, vecs, 3)
	assert.Equal(t, []float64{3, 1}, vecs[2])
}

func TestHTTPEmbedder_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL})
	_, err := e.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
}

func TestHTTPEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL})
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestHTTPEmbedder_Unconfigured(t *testing.T) {
	e := NewHTTPEmbedder(config.EmbeddingConfig{})
	assert.False(t, e.Configured())

	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	vecs, err := e.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, vecs)
}
