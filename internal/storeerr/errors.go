// Package storeerr holds the failure taxonomy shared by the storefront data
// sources and stores. Callers match with errors.Is; the wrapped message is
// meant to be shown to the user as is.
package storeerr

import "errors"

var (
	// ErrNotFound is a single entity lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCategory means a category filter matched nothing. It is a normal
	// "no products" state for the UI, not a fault.
	ErrEmptyCategory = errors.New("no products for category")
	// ErrDataUnavailable means the backing store is unreachable or answered
	// with something that could not be decoded.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrPersistenceWrite is logged when a local snapshot write fails.
	ErrPersistenceWrite = errors.New("snapshot write failed")
	// ErrOrderCreation aborts a checkout; cart and wallet stay untouched.
	ErrOrderCreation = errors.New("order creation failed")
)

// IsEmptyState reports whether err describes a user-visible empty state
// rather than a failure.
func IsEmptyState(err error) bool {
	return errors.Is(err, ErrEmptyCategory)
}
