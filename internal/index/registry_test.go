package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

func TestRegistryEnsureCreatesOnce(t *testing.T) {
	r := NewRegistry()
	cfg := entity.IndexConfig{Type: entity.IndexFlat}

	first, err := r.Ensure("lib-1", cfg, 3)
	require.NoError(t, err)

	second, err := r.Ensure("lib-1", cfg, 3)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestRegistryEnsurePropagatesConstructionError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Ensure("lib-1", entity.IndexConfig{Type: "bogus"}, 3)
	require.True(t, vdberr.Is(err, vdberr.KindValidation))
}

func TestRegistryGetUnknownLibraryNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
}

func TestRegistrySwapRebuildsFromVectors(t *testing.T) {
	r := NewRegistry()
	cfg := entity.IndexConfig{Type: entity.IndexFlat}
	_, err := r.Ensure("lib-1", cfg, 2)
	require.NoError(t, err)

	idx, err := r.Swap(context.Background(), "lib-1", cfg, 2, map[string][]float32{"a": {1, 0}})
	require.NoError(t, err)
	require.Equal(t, 1, idx.Size())

	got, err := r.Get("lib-1")
	require.NoError(t, err)
	require.Same(t, idx, got)
}

func TestRegistryDropRemovesIndex(t *testing.T) {
	r := NewRegistry()
	_, err := r.Ensure("lib-1", entity.IndexConfig{Type: entity.IndexFlat}, 2)
	require.NoError(t, err)

	r.Drop("lib-1")
	_, err = r.Get("lib-1")
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
}

func TestRegistryResetDropsEveryIndex(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Ensure("a", entity.IndexConfig{Type: entity.IndexFlat}, 2)
	_, _ = r.Ensure("b", entity.IndexConfig{Type: entity.IndexFlat}, 2)

	r.Reset()
	require.Empty(t, r.LibraryIDs())
	_, err := r.Get("a")
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
}

func TestRegistryLibraryIDs(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Ensure("a", entity.IndexConfig{Type: entity.IndexFlat}, 2)
	_, _ = r.Ensure("b", entity.IndexConfig{Type: entity.IndexFlat}, 2)

	require.ElementsMatch(t, []string{"a", "b"}, r.LibraryIDs())
}
