package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
)

var drivers = []string{DriverCGO, DriverPureGo}

func openTestStore(t *testing.T, driver string) *BlobStore {
	t.Helper()
	store, err := Open(driver, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBlobStore_ReadMissing(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := openTestStore(t, driver)

			_, err := store.Read(context.Background(), "my_tech_notes")
			assert.ErrorIs(t, err, repository.ErrBlobNotFound)
		})
	}
}

func TestBlobStore_WriteReplaces(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			store := openTestStore(t, driver)

			require.NoError(t, store.Write(ctx, "my_tech_notes", []byte(`[{"id":1}]`)))
			require.NoError(t, store.Write(ctx, "my_tech_notes", []byte(`[{"id":2},{"id":1}]`)))
			require.NoError(t, store.Write(ctx, "other", []byte(`[]`)))

			got, err := store.Read(ctx, "my_tech_notes")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":2},{"id":1}]`, string(got))

			var rows int
			require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM blobs").Scan(&rows))
			assert.Equal(t, 2, rows)
		})
	}
}

func TestBlobStore_EmptyValue(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, DriverPureGo)

	require.NoError(t, store.Write(ctx, "k", nil))
	got, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")

	store, err := Open(DriverPureGo, path)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "k", []byte("v1")))
	require.NoError(t, store.Close())

	reopened, err := Open(DriverPureGo, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	version, err := NewMigrator(reopened.db).Version()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", ":memory:")
	assert.Error(t, err)
}

func TestSplitSQLStatements(t *testing.T) {
	stmts := splitSQLStatements("-- comment\nCREATE TABLE a (x INT);\n\n  -- another\nCREATE TABLE b (y INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, stmts)
}
