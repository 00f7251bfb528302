package repository

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStore.Read when nothing is stored under the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the persistence medium behind the note history: a key/value
// store holding one serialized blob per key. Write replaces the whole value.
type BlobStore interface {
	// Read returns the blob stored under key, or ErrBlobNotFound
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores data under key, replacing any previous value atomically
	Write(ctx context.Context, key string, data []byte) error

	// Close releases backend resources
	Close() error
}
