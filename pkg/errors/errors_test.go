package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeInvalidParam:    http.StatusBadRequest,
		CodeTokenInvalid:    http.StatusUnauthorized,
		CodeTooManyRequests: http.StatusTooManyRequests,
		CodeIndexNotReady:   http.StatusServiceUnavailable,
		CodeLLMCallFailed:   http.StatusInternalServerError,
		CodeInternalError:   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus, "code %s", code)
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	e := ErrIndexNotReady.WithDetail("build timed out")

	assert.Equal(t, "build timed out", e.Detail)
	assert.Empty(t, ErrIndexNotReady.Detail)
}

func TestWithErrorDoesNotMutatePredefined(t *testing.T) {
	cause := stderrors.New("upstream down")
	e := ErrLLMCallFailed.WithError(cause)

	assert.ErrorIs(t, e, cause)
	assert.True(t, HasCode(e, CodeLLMCallFailed))
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus)
	assert.Nil(t, ErrLLMCallFailed.Err)
	assert.NotSame(t, ErrLLMCallFailed, e)
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	base := New(CodeInvalidParam, "message is required")
	wrapped := fmt.Errorf("handle: %w", base)

	require.True(t, IsAppError(wrapped))
	assert.Same(t, base, AsAppError(wrapped))
	assert.True(t, HasCode(wrapped, CodeInvalidParam))
	assert.False(t, HasCode(wrapped, CodeInternalError))
}

func TestAsAppErrorWrapsPlainError(t *testing.T) {
	plain := stderrors.New("boom")
	appErr := AsAppError(plain)

	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}
