package contentstore

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates the requested key is absent from the store.
	// Callers are expected to treat it as a normal outcome (404, nil result),
	// not as a failure.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the store cannot be reached at all,
	// typically because no credential is configured.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidReference indicates a public URL could not be resolved back
	// to a container/key pair owned by this store.
	ErrInvalidReference = errors.New("invalid asset reference")

	// ErrInvalidDocument indicates a document failed its family schema
	// validation and was not written.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrUnauthorized indicates a write was attempted without a valid admin
	// token.
	ErrUnauthorized = errors.New("unauthorized")
)

// StoreError represents a failure of a single object-store operation. The
// wrapped cause is preserved so callers can still match sentinel errors with
// errors.Is.
type StoreError struct {
	Container string
	Key       string
	Op        string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store operation %s failed for container %s: %v", e.Op, e.Container, e.Err)
	}
	return fmt.Sprintf("store operation %s failed for %s/%s: %v", e.Op, e.Container, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
