package buildcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnchanged_EmptyCache_IsFalse(t *testing.T) {
	cache, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ok, err := cache.Unchanged(context.Background(), "spec-a", Snapshot{"a.md": "h1"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreSnapshot_ThenUnchanged(t *testing.T) {
	cache, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	snap := Snapshot{"a.md": "h1", "b.md": "h2"}
	require.NoError(t, cache.StoreSnapshot(ctx, "build-1", "spec-a", snap))

	ok, err := cache.Unchanged(ctx, "spec-a", snap)
	require.NoError(t, err)
	require.True(t, ok)

	id, err := cache.LastBuildID(ctx)
	require.NoError(t, err)
	require.Equal(t, "build-1", id)
}

func TestUnchanged_DetectsChanges(t *testing.T) {
	cache, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	require.NoError(t, cache.StoreSnapshot(ctx, "build-1", "spec-a",
		Snapshot{"a.md": "h1"}))

	// Modified content.
	ok, err := cache.Unchanged(ctx, "spec-a", Snapshot{"a.md": "h1-changed"})
	require.NoError(t, err)
	require.False(t, ok)

	// Added document.
	ok, err = cache.Unchanged(ctx, "spec-a", Snapshot{"a.md": "h1", "b.md": "h2"})
	require.NoError(t, err)
	require.False(t, ok)

	// Removed document.
	ok, err = cache.Unchanged(ctx, "spec-a", Snapshot{})
	require.NoError(t, err)
	require.False(t, ok)

	// Changed sidebar specification.
	ok, err = cache.Unchanged(ctx, "spec-b", Snapshot{"a.md": "h1"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashBytes_Deterministic(t *testing.T) {
	require.Equal(t, HashBytes([]byte("x")), HashBytes([]byte("x")))
	require.NotEqual(t, HashBytes([]byte("x")), HashBytes([]byte("y")))
}
