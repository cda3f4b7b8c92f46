package storeerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: product %q", ErrNotFound, "9"), http.StatusNotFound},
		{fmt.Errorf("%w: silo", ErrEmptyCategory), http.StatusNotFound},
		{fmt.Errorf("%w: timeout", ErrDataUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: insert", ErrOrderCreation), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestIsEmptyState(t *testing.T) {
	assert.True(t, IsEmptyState(fmt.Errorf("%w: silo", ErrEmptyCategory)))
	assert.False(t, IsEmptyState(ErrNotFound))
	assert.False(t, IsEmptyState(nil))
}
