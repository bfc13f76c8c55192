package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "a", EmbeddingDim: 2})
	require.NoError(t, err)

	_, err = svc.Search(ctx, SearchRequest{LibraryID: lib.ID, Query: nil, K: 1})
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}

func TestSearchRejectsNonPositiveK(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "a", EmbeddingDim: 2})
	require.NoError(t, err)

	_, err = svc.Search(ctx, SearchRequest{LibraryID: lib.ID, Query: []float32{1, 0}, K: 0})
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "a", EmbeddingDim: 3})
	require.NoError(t, err)

	_, err = svc.Search(ctx, SearchRequest{LibraryID: lib.ID, Query: []float32{1, 0}, K: 1})
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}

func TestSearchUnknownLibraryNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.Search(context.Background(), SearchRequest{LibraryID: "missing", Query: []float32{1}, K: 1})
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
}

func TestSearchFiltersByDocumentID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "a", EmbeddingDim: 2})
	require.NoError(t, err)

	docA, err := svc.CreateDocument(ctx, CreateDocumentRequest{LibraryID: lib.ID})
	require.NoError(t, err)
	docB, err := svc.CreateDocument(ctx, CreateDocumentRequest{LibraryID: lib.ID})
	require.NoError(t, err)

	_, err = svc.CreateChunk(ctx, CreateChunkRequest{LibraryID: lib.ID, DocumentID: docA.ID, Embedding: []float32{1, 0}})
	require.NoError(t, err)
	_, err = svc.CreateChunk(ctx, CreateChunkRequest{LibraryID: lib.ID, DocumentID: docB.ID, Embedding: []float32{0.99, 0.01}})
	require.NoError(t, err)

	results, err := svc.Search(ctx, SearchRequest{
		LibraryID: lib.ID, Query: []float32{1, 0}, K: 5,
		Filter: SearchFilter{DocumentID: docA.ID},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, docA.ID, results[0].Chunk.DocumentID)
}

func TestSearchFiltersByMetadata(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "a", EmbeddingDim: 2})
	require.NoError(t, err)

	_, err = svc.CreateChunk(ctx, CreateChunkRequest{LibraryID: lib.ID, Embedding: []float32{1, 0}, Metadata: map[string]string{"lang": "en"}})
	require.NoError(t, err)
	_, err = svc.CreateChunk(ctx, CreateChunkRequest{LibraryID: lib.ID, Embedding: []float32{0.99, 0.01}, Metadata: map[string]string{"lang": "fr"}})
	require.NoError(t, err)

	results, err := svc.Search(ctx, SearchRequest{
		LibraryID: lib.ID, Query: []float32{1, 0}, K: 5,
		Filter: SearchFilter{MetadataEquals: map[string]string{"lang": "fr"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "fr", results[0].Chunk.Metadata["lang"])
}

func TestSearchCacheServesRepeatQueryAndInvalidatesOnMutation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	lib, err := svc.CreateLibrary(ctx, CreateLibraryRequest{Name: "a", EmbeddingDim: 2})
	require.NoError(t, err)
	_, err = svc.CreateChunk(ctx, CreateChunkRequest{LibraryID: lib.ID, Embedding: []float32{1, 0}})
	require.NoError(t, err)

	first, err := svc.Search(ctx, SearchRequest{LibraryID: lib.ID, Query: []float32{1, 0}, K: 5})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A second identical query should hit the cache and return the same shape.
	second, err := svc.Search(ctx, SearchRequest{LibraryID: lib.ID, Query: []float32{1, 0}, K: 5})
	require.NoError(t, err)
	require.Equal(t, first[0].Chunk.ID, second[0].Chunk.ID)

	// Adding a chunk bumps no library version by itself, but updating the
	// library's config does, and a stale cache entry must never be served
	// once the library has moved past the version it was cached under.
	updated, err := svc.UpdateLibraryConfig(ctx, UpdateLibraryConfigRequest{
		LibraryID:      lib.ID,
		NewIndexConfig: entity.IndexConfig{Type: entity.IndexFlat},
	})
	require.NoError(t, err)
	require.NotEqual(t, lib.Version, updated.Version)
}
