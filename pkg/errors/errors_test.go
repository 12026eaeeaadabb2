package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest},
		{"not found", NewNotFound("missing"), http.StatusNotFound},
		{"conflict", NewConflict("dup"), http.StatusConflict},
		{"unauthorized", NewUnauthorized(""), http.StatusUnauthorized},
		{"unavailable", NewUnavailable("down", nil), http.StatusServiceUnavailable},
		{"internal", NewInternal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := GetAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.want, appErr.HTTPStatus())
		})
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewNotFound("node not found")
	wrapped := Wrap(base, "loading node")

	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "loading node: node not found")

	foreign := Wrap(fmt.Errorf("socket closed"), "querying store")
	assert.True(t, IsInternal(foreign))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestPredicatesSeeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewValidation("quality out of range"))
	assert.True(t, IsValidation(err))
	assert.Equal(t, ErrorTypeValidation, TypeOf(err))
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("plain")))
}

func TestValidationWithCause(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := NewValidationWithCause("rejected", sentinel)

	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, sentinel)
}
