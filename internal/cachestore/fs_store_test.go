package cachestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	obj := &Object{Type: ObjectTypeIntermediate, Data: []byte("cropped pdf bytes")}
	hash, err := store.Put(ctx, obj)
	require.NoError(t, err)
	assert.Len(t, hash, 64) // hex-encoded sha256

	got, err := store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, obj.Data, got.Data)
	assert.Equal(t, ObjectTypeIntermediate, got.Type)
	assert.Equal(t, 1, got.Metadata.RefCount)
}

func TestFSStorePutDeduplicatesByContent(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	data := []byte("same bytes twice")
	h1, err := store.Put(ctx, &Object{Type: ObjectTypeArtifact, Data: data})
	require.NoError(t, err)
	h2, err := store.Put(ctx, &Object{Type: ObjectTypeArtifact, Data: data})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	got, err := store.Get(ctx, h1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Metadata.RefCount)
}

func TestFSStoreGetMissingReturnsErrNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "deadbeef")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestFSStoreExistsAndDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	hash, err := store.Put(ctx, &Object{Type: ObjectTypeTempFile, Data: []byte("x")})
	require.NoError(t, err)

	ok, err := store.Exists(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, hash))

	ok, err = store.Exists(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	err = store.Delete(ctx, hash)
	assert.True(t, IsNotFound(err))
}

func TestFSStoreListFiltersByType(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	h1, err := store.Put(ctx, &Object{Type: ObjectTypeIntermediate, Data: []byte("one")})
	require.NoError(t, err)
	_, err = store.Put(ctx, &Object{Type: ObjectTypeArtifact, Data: []byte("two")})
	require.NoError(t, err)

	hashes, err := store.List(ctx, ObjectTypeIntermediate)
	require.NoError(t, err)
	assert.Equal(t, []string{h1}, hashes)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFSStoreGCRemovesUnreferenced(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	keep, err := store.Put(ctx, &Object{Type: ObjectTypeArtifact, Data: []byte("keep")})
	require.NoError(t, err)
	drop, err := store.Put(ctx, &Object{Type: ObjectTypeArtifact, Data: []byte("drop")})
	require.NoError(t, err)

	removed, err := store.GC(ctx, map[string]bool{keep: true})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ok, err := store.Exists(ctx, keep)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, drop)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFSStoreBuildRefRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.AddBuildRef("build-1", []string{"aaa", "bbb"}))

	hashes, err := store.GetBuildRef("build-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa", "bbb"}, hashes)

	hashes, err = store.GetBuildRef("no-such-build")
	require.NoError(t, err)
	assert.Nil(t, hashes)
}
