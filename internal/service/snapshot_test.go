package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSnapshotCanBeCalledRepeatedly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "docs", EmbeddingDim: 2})
	require.NoError(t, err)
	_, err = svc.CreateChunk(ctx, CreateChunkRequest{LibraryID: lib.ID, Text: "hello", Embedding: []float32{1, 0}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, svc.SaveSnapshot(path))

	reloaded := newTestService()
	loaded, err := reloaded.LoadSnapshot(path)
	require.NoError(t, err)
	require.True(t, loaded)

	// A background watcher or "stats --watch" reloads the same snapshot on
	// every tick; the second and later calls must not fail against state
	// the first call already restored.
	loaded, err = reloaded.LoadSnapshot(path)
	require.NoError(t, err)
	require.True(t, loaded)

	libs := reloaded.ListLibraries(ctx)
	require.Len(t, libs, 1)
	require.Equal(t, "docs", libs[0].Name)

	results, err := reloaded.Search(ctx, SearchRequest{LibraryID: lib.ID, Query: []float32{1, 0}, K: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestLoadSnapshotDropsLibrariesAbsentFromNewFile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	kept, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "kept", EmbeddingDim: 2})
	require.NoError(t, err)
	removed, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "removed", EmbeddingDim: 2})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, svc.SaveSnapshot(path))

	reloaded := newTestService()
	_, err = reloaded.LoadSnapshot(path)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLibrary(ctx, removed.ID))
	require.NoError(t, svc.SaveSnapshot(path))

	_, err = reloaded.LoadSnapshot(path)
	require.NoError(t, err)

	libs := reloaded.ListLibraries(ctx)
	require.Len(t, libs, 1)
	require.Equal(t, kept.ID, libs[0].ID)
}

func TestLoadSnapshotMissingFileLeavesServiceUntouched(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "docs", EmbeddingDim: 2})
	require.NoError(t, err)

	loaded, err := svc.LoadSnapshot(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	require.False(t, loaded)
	require.Len(t, svc.ListLibraries(ctx), 1)
}
