package providers

import (
	"context"
	"errors"
)

// MapStore persists rendered map pages.
type MapStore interface {
	// Put writes content under key, replacing any previous object.
	Put(ctx context.Context, key string, content []byte, contentType string) error

	// Get returns the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
}

// ErrObjectNotFound is returned by MapStore.Get for unknown keys.
var ErrObjectNotFound = errors.New("storage: no object")
