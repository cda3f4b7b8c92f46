package storeerr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps the taxonomy onto response codes at the presentation
// boundary. Unknown errors are treated as server faults.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyCategory):
		return http.StatusNotFound
	case errors.Is(err, ErrDataUnavailable), errors.Is(err, ErrOrderCreation):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
