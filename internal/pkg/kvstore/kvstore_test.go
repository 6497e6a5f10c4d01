package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "token", []byte("abc")))
	v, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)

	require.NoError(t, store.Set(ctx, "token", []byte("def")))
	v, err = store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("def"), v)

	require.NoError(t, store.Delete(ctx, "token"))
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, "token"))
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFile(t *testing.T) {
	testStore(t, NewFile(filepath.Join(t.TempDir(), "nested", "store.json")))
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	require.NoError(t, NewFile(path).Set(ctx, "user", []byte(`{"id":"1"}`)))

	v, err := NewFile(path).Get(ctx, "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(v))
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFile(path).Get(context.Background(), "user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}
