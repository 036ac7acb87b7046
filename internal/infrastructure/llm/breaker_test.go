package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
	"portfolio-chat-api/internal/domain/service/servicetest"
	apperrors "portfolio-chat-api/pkg/errors"
)

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestBreakerCompleter_OpensAfterFailures(t *testing.T) {
	upstream := servicetest.NewFailingCompleter(errors.New("upstream 500"))
	b := NewBreakerCompleter(upstream, testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.Complete(ctx, service.CompletionRequest{User: "hi"})
		require.Error(t, err)
		assert.False(t, apperrors.HasCode(err, apperrors.CodeServiceUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Complete(ctx, service.CompletionRequest{User: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeServiceUnavailable))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, upstream.Calls())
}

func TestBreakerCompleter_PassesThrough(t *testing.T) {
	upstream := servicetest.NewEchoCompleter()
	b := NewBreakerCompleter(upstream, testBreakerConfig())

	out, err := b.Complete(context.Background(), service.CompletionRequest{System: "sys", User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "sys\n\nhi", out)
	assert.True(t, b.Configured())
	assert.Equal(t, "stub", b.Provider())
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerCompleter_IgnoresCancellation(t *testing.T) {
	upstream := servicetest.NewFailingCompleter(context.Canceled)
	b := NewBreakerCompleter(upstream, testBreakerConfig())

	for i := 0; i < 5; i++ {
		_, err := b.Complete(context.Background(), service.CompletionRequest{User: "hi"})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 5, upstream.Calls())
}
