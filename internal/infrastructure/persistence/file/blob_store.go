// Package file stores note history blobs as JSON files on an afero
// filesystem, one file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// BlobStore keeps each key in <dir>/<key>.json
type BlobStore struct {
	fs  afero.Fs
	dir string
}

// NewBlobStore creates a file-backed store rooted at dir
func NewBlobStore(fsys afero.Fs, dir string) *BlobStore {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &BlobStore{fs: fsys, dir: dir}
}

// Path returns the file that holds key
func (s *BlobStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read returns the file contents for key
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey.MatchString(key) {
		return nil, fmt.Errorf("invalid blob key %q", key)
	}

	data, err := afero.ReadFile(s.fs, s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, repository.ErrBlobNotFound
		}
		return nil, fmt.Errorf("read %s: %w", s.Path(key), err)
	}
	return data, nil
}

// Write replaces the file for key atomically
func (s *BlobStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid blob key %q", key)
	}

	unlock, err := s.lock(key)
	if err != nil {
		return err
	}
	defer unlock()

	return WriteFileAtomic(s.fs, s.Path(key), data, 0o600)
}

// lock holds an advisory lock on <dir>/.<key>.lock for the duration of a
// write, so processes sharing the directory do not interleave. Only the OS
// filesystem is locked.
func (s *BlobStore) lock(key string) (func(), error) {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return func() {}, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, "."+key+".lock"), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", f.Name(), err)
	}
	return func() {
		_ = flockUnlock(f)
		_ = f.Close()
	}, nil
}

// Close is a no-op
func (s *BlobStore) Close() error {
	return nil
}
