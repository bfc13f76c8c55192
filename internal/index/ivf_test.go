package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

func TestNewIVFIndexRejectsInvalidConfig(t *testing.T) {
	_, err := NewIVFIndex(4, 0, 1)
	require.True(t, vdberr.Is(err, vdberr.KindValidation))

	_, err = NewIVFIndex(4, 2, 3)
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}

func TestIVFIndexAddBeforeRebuildUsesImplicitCluster(t *testing.T) {
	ix, err := NewIVFIndex(2, 3, 1)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, ix.Add(ctx, "b", []float32{0, 1}))

	results, err := ix.Search(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a", results[0].ChunkID)
}

func TestIVFIndexAddRejectsDimensionMismatch(t *testing.T) {
	ix, err := NewIVFIndex(3, 2, 1)
	require.NoError(t, err)

	err = ix.Add(context.Background(), "a", []float32{1, 0})
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}

func TestIVFIndexAddRejectsDuplicate(t *testing.T) {
	ix, err := NewIVFIndex(2, 2, 1)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))
	err = ix.Add(ctx, "a", []float32{0, 1})
	require.True(t, vdberr.Is(err, vdberr.KindConflict))
}

func TestIVFIndexUpdateUnknownNotFound(t *testing.T) {
	ix, err := NewIVFIndex(2, 2, 1)
	require.NoError(t, err)

	err = ix.Update(context.Background(), "missing", []float32{1, 0})
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
}

func TestIVFIndexRemoveShrinksSize(t *testing.T) {
	ix, err := NewIVFIndex(2, 2, 1)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))
	require.Equal(t, 1, ix.Size())
	require.NoError(t, ix.Remove(ctx, "a"))
	require.Equal(t, 0, ix.Size())
}

func TestIVFIndexRebuildClustersAndSearchesNearestProbe(t *testing.T) {
	ix, err := NewIVFIndex(2, 2, 1)
	require.NoError(t, err)

	ctx := context.Background()
	vectors := map[string][]float32{
		"a": {1, 0},
		"b": {0.95, 0.05},
		"c": {0, 1},
		"d": {0.05, 0.95},
	}
	require.NoError(t, ix.Rebuild(ctx, vectors))
	require.Equal(t, 4, ix.Size())

	results, err := ix.Search(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []string{results[0].ChunkID, results[1].ChunkID}
	require.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestIVFIndexRebuildIsDeterministicAcrossRuns(t *testing.T) {
	vectors := map[string][]float32{
		"a": {1, 0},
		"b": {0.95, 0.05},
		"c": {0, 1},
		"d": {0.05, 0.95},
		"e": {0.9, 0.1},
	}

	run := func() []string {
		ix, err := NewIVFIndex(2, 2, 1)
		require.NoError(t, err)
		require.NoError(t, ix.Rebuild(context.Background(), vectors))
		results, err := ix.Search(context.Background(), []float32{1, 0}, 5, nil)
		require.NoError(t, err)
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.ChunkID
		}
		return ids
	}

	first := run()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, run())
	}
}

func TestIVFIndexRebuildWithFewerPointsThanCentroids(t *testing.T) {
	ix, err := NewIVFIndex(2, 5, 1)
	require.NoError(t, err)

	err = ix.Rebuild(context.Background(), map[string][]float32{"a": {1, 0}})
	require.NoError(t, err)
	require.Equal(t, 1, ix.Size())
}

func TestIVFIndexRebuildEmptyClearsState(t *testing.T) {
	ix, err := NewIVFIndex(2, 3, 1)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, ix.Rebuild(ctx, map[string][]float32{}))
	require.Equal(t, 0, ix.Size())
}

func TestIVFIndexSearchAppliesFilter(t *testing.T) {
	ix, err := NewIVFIndex(2, 2, 2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.Rebuild(ctx, map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	}))

	results, err := ix.Search(ctx, []float32{1, 0}, 5, func(id string) bool { return id != "a" })
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, "a", r.ChunkID)
	}
}

func TestIVFIndexSearchRejectsNonPositiveK(t *testing.T) {
	ix, err := NewIVFIndex(2, 2, 1)
	require.NoError(t, err)

	_, err = ix.Search(context.Background(), []float32{1, 0}, 0, nil)
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}
