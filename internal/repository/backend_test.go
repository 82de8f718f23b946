package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend checks the contract every Backend must honour
func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := backend.Read(ctx, ProductsDocument)
	require.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, backend.Write(ctx, ProductsDocument, []byte(`[{"id":1}]`)))
	data, err := backend.Read(ctx, ProductsDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	// whole-document replace, last write wins
	require.NoError(t, backend.Write(ctx, ProductsDocument, []byte(`[]`)))
	data, err = backend.Read(ctx, ProductsDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	// documents are independent
	_, err = backend.Read(ctx, SalesDocument)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	exerciseBackend(t, backend)
	assert.FileExists(t, filepath.Join(dir, "products.json"))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files must not be left behind")
}

func TestBoltBackend(t *testing.T) {
	backend, err := NewBoltBackend(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer backend.Close()

	exerciseBackend(t, backend)
}

func TestRedisBackend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client, "test-ledger")
	defer backend.Close()

	exerciseBackend(t, backend)
	assert.True(t, mr.Exists("test-ledger:products"))
}

func TestRedisBackend_ReadErrorIsNotNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	backend := NewRedisBackend(client, "")
	defer backend.Close()

	mr.Close()

	_, err = backend.Read(context.Background(), ProductsDocument)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDocumentNotFound)
}
