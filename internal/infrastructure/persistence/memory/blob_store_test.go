package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
)

func TestBlobStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	store := NewBlobStore()

	_, err := store.Read(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrBlobNotFound)

	data := []byte("[]")
	require.NoError(t, store.Write(ctx, "k", data))
	data[0] = 'x'

	got, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.Equal(t, 1, store.Writes())

	store.Set("k", []byte("seed"))
	got, _ = store.Read(ctx, "k")
	assert.Equal(t, "seed", string(got))
	assert.Equal(t, 1, store.Writes())
}

func TestBlobStore_FailWritesAndCancel(t *testing.T) {
	store := NewBlobStore()
	store.FailWrites = errors.New("disk full")
	assert.EqualError(t, store.Write(context.Background(), "k", nil), "disk full")
	assert.Zero(t, store.Writes())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Read(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, store.Close())
}
