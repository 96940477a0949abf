package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("store.Scholar", errors.New("record not found"))
	wrapped := fmt.Errorf("materialize node: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsPersistence(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := EmptyResult("graph.Assemble", errors.New("no primary scholars"))
	err := fmt.Errorf("assemble: %w", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, IsEmptyResult(err))
	assert.Equal(t, "graph.Assemble: no primary scholars", sentinel.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x", nil), http.StatusNotFound},
		{Validation("x", nil), http.StatusBadRequest},
		{EmptyResult("x", nil), http.StatusOK},
		{Persistence("x", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
