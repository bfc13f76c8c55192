package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

func TestChunkRepositoryCreateAndListByLibrary(t *testing.T) {
	repo := NewChunkRepository()
	_, err := repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1", Embedding: []float32{1, 0}})
	require.NoError(t, err)
	_, err = repo.Create(&entity.Chunk{ID: "c2", LibraryID: "lib-1", Embedding: []float32{0, 1}})
	require.NoError(t, err)
	_, err = repo.Create(&entity.Chunk{ID: "c3", LibraryID: "lib-2", Embedding: []float32{1, 1}})
	require.NoError(t, err)

	require.Len(t, repo.ListByLibrary("lib-1"), 2)
	require.Len(t, repo.ListByLibrary("lib-2"), 1)
	require.Empty(t, repo.ListByLibrary("lib-3"))
}

func TestChunkRepositoryListByDocument(t *testing.T) {
	repo := NewChunkRepository()
	_, err := repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1", DocumentID: "doc-1"})
	require.NoError(t, err)
	_, err = repo.Create(&entity.Chunk{ID: "c2", LibraryID: "lib-1"})
	require.NoError(t, err)

	require.Len(t, repo.ListByDocument("doc-1"), 1)
	require.Empty(t, repo.ListByDocument(""))
}

func TestChunkRepositoryVectorsByLibrary(t *testing.T) {
	repo := NewChunkRepository()
	_, err := repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1", Embedding: []float32{1, 2, 3}})
	require.NoError(t, err)

	vectors := repo.VectorsByLibrary("lib-1")
	require.Equal(t, []float32{1, 2, 3}, vectors["c1"])

	// Mutating the returned map/slice must not affect stored state.
	vectors["c1"][0] = 99
	again := repo.VectorsByLibrary("lib-1")
	require.Equal(t, float32(1), again["c1"][0])
}

func TestChunkRepositoryUpdateIfVersionRejectsStale(t *testing.T) {
	repo := NewChunkRepository()
	_, err := repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1"})
	require.NoError(t, err)

	_, err = repo.UpdateIfVersion("c1", 5, func(c *entity.Chunk) { c.Text = "x" })
	require.True(t, vdberr.Is(err, vdberr.KindConflict))
}

func TestChunkRepositoryDeleteByLibraryCascades(t *testing.T) {
	repo := NewChunkRepository()
	_, _ = repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1", DocumentID: "doc-1"})
	_, _ = repo.Create(&entity.Chunk{ID: "c2", LibraryID: "lib-1", DocumentID: "doc-1"})

	deleted := repo.DeleteByLibrary("lib-1")
	require.ElementsMatch(t, []string{"c1", "c2"}, deleted)
	require.Empty(t, repo.ListByLibrary("lib-1"))
	require.Empty(t, repo.ListByDocument("doc-1"))
}

func TestChunkRepositoryDeleteByDocumentUpdatesLibraryIndex(t *testing.T) {
	repo := NewChunkRepository()
	_, _ = repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1", DocumentID: "doc-1"})
	_, _ = repo.Create(&entity.Chunk{ID: "c2", LibraryID: "lib-1", DocumentID: "doc-2"})

	deleted := repo.DeleteByDocument("doc-1")
	require.Equal(t, []string{"c1"}, deleted)
	require.Len(t, repo.ListByLibrary("lib-1"), 1)
}

func TestChunkRepositoryRestore(t *testing.T) {
	repo := NewChunkRepository()
	require.NoError(t, repo.Restore(&entity.Chunk{ID: "c1", LibraryID: "lib-1", Version: 3, Embedding: []float32{1}}))

	got, err := repo.Get("c1")
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.Version)
	require.Len(t, repo.ListByLibrary("lib-1"), 1)
}

func TestChunkRepositoryResetClearsSecondaryIndexes(t *testing.T) {
	repo := NewChunkRepository()
	_, err := repo.Create(&entity.Chunk{ID: "c1", LibraryID: "lib-1", DocumentID: "doc-1"})
	require.NoError(t, err)

	repo.Reset()
	require.Empty(t, repo.ListByLibrary("lib-1"))
	require.Empty(t, repo.ListByDocument("doc-1"))

	require.NoError(t, repo.Restore(&entity.Chunk{ID: "c1", LibraryID: "lib-1", DocumentID: "doc-1"}))
	require.Len(t, repo.ListByLibrary("lib-1"), 1)
}
