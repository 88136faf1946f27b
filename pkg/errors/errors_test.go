package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeLeaseNotFound, "no analysis stored for lease")

	assert.Equal(t, ErrCodeLeaseNotFound, err.Code)
	assert.Equal(t, "no analysis stored for lease", err.Message)
	assert.NotEmpty(t, err.Stack)
	assert.Nil(t, err.Cause)
}

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without detail",
			err:  &AppError{Code: ErrCodeInternal, Message: "boom"},
			want: "[COMMON_001] boom",
		},
		{
			name: "with detail",
			err:  &AppError{Code: ErrCodeLeaseNotFound, Message: "missing", Detail: "lease_id=ls-42"},
			want: "[LEASE_001] missing: lease_id=ls-42",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrCodeStoreWrite, "ignored"))
	})

	t.Run("wraps cause", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := Wrap(cause, ErrCodeStoreWrite, "failed to persist clauses")

		require.NotNil(t, err)
		assert.Equal(t, ErrCodeStoreWrite, err.Code)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("unknown code preserves original classification", func(t *testing.T) {
		inner := New(ErrCodeEmbeddingFailed, "embed failed")
		err := Wrap(inner, ErrCodeUnknown, "adding context")
		assert.Equal(t, ErrCodeEmbeddingFailed, err.Code)
	})
}

func TestWithDetail(t *testing.T) {
	base := New(ErrCodeValidation, "bad input")
	detailed := base.WithDetail("field=query")

	assert.Empty(t, base.Detail, "receiver must not be mutated")
	assert.Equal(t, "field=query", detailed.Detail)

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("x"))
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeLLMUnavailable, "completion failed")
	wrapped := Wrap(inner, ErrCodeInternal, "question answering failed")

	assert.True(t, IsCode(wrapped, ErrCodeLLMUnavailable))
	assert.True(t, IsCode(wrapped, ErrCodeInternal))
	assert.False(t, IsCode(wrapped, ErrCodeCacheError))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(ErrCodeLeaseNotFound, "no lease")))
	assert.True(t, IsNotFound(Wrap(NotFound("gone"), ErrCodeInternal, "ctx")))
	assert.False(t, IsNotFound(Internal("boom")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeCacheError, GetCode(New(ErrCodeCacheError, "x")))
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ErrCodeValidation.HTTPStatus())
	assert.Equal(t, 404, ErrCodeLeaseNotFound.HTTPStatus())
	assert.Equal(t, 503, ErrCodeLLMUnavailable.HTTPStatus())
	assert.Equal(t, 500, ErrCodeEmbeddingFailed.HTTPStatus())
}
