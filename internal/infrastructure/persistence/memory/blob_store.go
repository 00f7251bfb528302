// Package memory provides an in-process BlobStore, used in tests and for
// throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
)

// BlobStore keeps blobs in a map
type BlobStore struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	writes int
	// FailWrites makes every Write return this error when set
	FailWrites error
}

// NewBlobStore creates an empty store
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Read returns a copy of the blob under key
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Write replaces the blob under key
func (s *BlobStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}
	b := make([]byte, len(data))
	copy(b, data)
	s.blobs[key] = b
	s.writes++
	return nil
}

// Set seeds a blob directly, bypassing write accounting
func (s *BlobStore) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
}

// Writes returns how many successful writes happened
func (s *BlobStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Close is a no-op
func (s *BlobStore) Close() error {
	return nil
}
