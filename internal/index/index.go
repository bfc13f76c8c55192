// Package index implements the pluggable ANN index contract and its
// concrete strategies: Flat (exact), LSH (random hyperplane), IVF
// (spherical k-means), and the optional HNSW enrichment backed by
// coder/hnsw. Every strategy operates on L2-normalized float32 vectors
// and scores with cosine similarity.
package index

import (
	"context"
	"math"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// Result is one scored hit from a Search call.
type Result struct {
	ChunkID string
	Score   float32
}

// Index is the contract every ANN strategy satisfies. Implementations
// are not expected to be safe for concurrent use on their own; callers
// serialize mutation through the per-library lock in internal/lock.
type Index interface {
	// Add inserts a new vector under chunkID. It is an error for
	// chunkID to already be present.
	Add(ctx context.Context, chunkID string, vector []float32) error

	// Update replaces the vector stored under chunkID.
	Update(ctx context.Context, chunkID string, vector []float32) error

	// Remove deletes chunkID from the index. Removing an absent id is
	// a no-op.
	Remove(ctx context.Context, chunkID string) error

	// Search returns up to k nearest neighbors to query, ranked by
	// descending cosine similarity with ties broken by ascending
	// chunk id. filter, if non-nil, is applied to candidates before
	// final ranking selection: a chunk for which filter returns false
	// is excluded from the result regardless of score.
	Search(ctx context.Context, query []float32, k int, filter func(chunkID string) bool) ([]Result, error)

	// Rebuild discards all state and re-inserts every (id, vector)
	// pair from scratch. Used on startup and after configuration
	// changes that can't be satisfied incrementally (e.g. IVF
	// recentroiding).
	Rebuild(ctx context.Context, vectors map[string][]float32) error

	// Size returns the number of vectors currently indexed.
	Size() int

	// Dim returns the embedding dimension this index was built for.
	Dim() int
}

// New constructs a fresh, empty Index for cfg and dim. Dispatch is a
// plain switch: there is no registration mechanism because the set of
// strategies is closed.
func New(cfg entity.IndexConfig, dim int) (Index, error) {
	if dim <= 0 {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding_dim", "embedding dimension must be positive")
	}
	switch cfg.Type {
	case entity.IndexFlat:
		return NewFlatIndex(dim), nil
	case entity.IndexLSH:
		return NewLSHIndex(dim, cfg.NumTables, cfg.HyperplanesPerTable)
	case entity.IndexIVF:
		return NewIVFIndex(dim, cfg.NumCentroids, cfg.NProbe)
	case entity.IndexHNSW:
		return NewHNSWIndex(dim, cfg.M, cfg.EfSearch)
	default:
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "type", "unknown index type")
	}
}

// normalize returns a copy of v scaled to unit L2 norm. A zero vector
// is returned unchanged; callers reject zero vectors at validation
// time (ERR_202) so Search/Add never see one in practice, but index
// internals stay defensive against division by zero regardless.
func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

// passes reports whether filter admits chunkID, treating a nil filter
// as admitting everything.
func passes(filter func(chunkID string) bool, chunkID string) bool {
	return filter == nil || filter(chunkID)
}

// cosineSimilarity assumes a and b are already unit-normalized and
// clamps the result to [-1, 1] to absorb float rounding.
func cosineSimilarity(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot > 1 {
		return 1
	}
	if dot < -1 {
		return -1
	}
	return dot
}
