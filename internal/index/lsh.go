package index

import (
	"context"
	"math/rand"
	"sort"

	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// lshOversampleFloor is the minimum number of bucket-matched candidates
// LSHIndex wants before ranking, even when k is small: when probing
// yields fewer than max(k, lshOversampleFloor) candidates, Search scores
// every stored vector instead. Too few candidates makes small-k queries
// unstable because a single lucky bucket collision can dominate the
// result set.
const lshOversampleFloor = 50

// LSHIndex approximates nearest-neighbor search with random hyperplane
// locality-sensitive hashing: each table hashes a vector to a bit
// signature by its sign against a fixed set of random hyperplanes, and
// candidates are drawn from buckets within Hamming distance 1 of the
// query's signature in any table.
type LSHIndex struct {
	dim        int
	numTables  int
	numPlanes  int
	hyperplanes [][][]float32 // [table][plane] -> dim-vector
	buckets    []map[uint64][]string
	vectors    map[string][]float32
	signatures map[string][]uint64 // chunkID -> signature per table
}

// NewLSHIndex builds an LSHIndex with numTables independent hash
// tables, each using hyperplanesPerTable random hyperplanes.
func NewLSHIndex(dim, numTables, hyperplanesPerTable int) (*LSHIndex, error) {
	if numTables <= 0 || hyperplanesPerTable <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "lsh", "num_tables and hyperplanes_per_table must be positive")
	}
	if hyperplanesPerTable > 63 {
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "hyperplanes_per_table", "hyperplanes_per_table must fit in a 63-bit signature")
	}

	src := rand.New(rand.NewSource(1))
	planes := make([][][]float32, numTables)
	buckets := make([]map[uint64][]string, numTables)
	for t := 0; t < numTables; t++ {
		planes[t] = make([][]float32, hyperplanesPerTable)
		for p := 0; p < hyperplanesPerTable; p++ {
			plane := make([]float32, dim)
			for d := 0; d < dim; d++ {
				plane[d] = float32(src.NormFloat64())
			}
			planes[t][p] = normalize(plane)
		}
		buckets[t] = make(map[uint64][]string)
	}

	return &LSHIndex{
		dim:         dim,
		numTables:   numTables,
		numPlanes:   hyperplanesPerTable,
		hyperplanes: planes,
		buckets:     buckets,
		vectors:     make(map[string][]float32),
		signatures:  make(map[string][]uint64),
	}, nil
}

func (l *LSHIndex) Dim() int  { return l.dim }
func (l *LSHIndex) Size() int { return len(l.vectors) }

func (l *LSHIndex) signature(table int, v []float32) uint64 {
	var sig uint64
	for p, plane := range l.hyperplanes[table] {
		var dot float32
		for d := range v {
			dot += v[d] * plane[d]
		}
		if dot >= 0 {
			sig |= 1 << uint(p)
		}
	}
	return sig
}

func (l *LSHIndex) insert(chunkID string, vec []float32) {
	sigs := make([]uint64, l.numTables)
	for t := 0; t < l.numTables; t++ {
		sig := l.signature(t, vec)
		sigs[t] = sig
		l.buckets[t][sig] = append(l.buckets[t][sig], chunkID)
	}
	l.vectors[chunkID] = vec
	l.signatures[chunkID] = sigs
}

func (l *LSHIndex) evict(chunkID string) {
	sigs, ok := l.signatures[chunkID]
	if !ok {
		return
	}
	for t, sig := range sigs {
		bucket := l.buckets[t][sig]
		for i, id := range bucket {
			if id == chunkID {
				l.buckets[t][sig] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
	}
	delete(l.vectors, chunkID)
	delete(l.signatures, chunkID)
}

func (l *LSHIndex) Add(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != l.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := l.vectors[chunkID]; exists {
		return vdberr.Conflict("chunk already present in index")
	}
	l.insert(chunkID, normalize(vector))
	return nil
}

func (l *LSHIndex) Update(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != l.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := l.vectors[chunkID]; !exists {
		return vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not present in index")
	}
	l.evict(chunkID)
	l.insert(chunkID, normalize(vector))
	return nil
}

func (l *LSHIndex) Remove(ctx context.Context, chunkID string) error {
	l.evict(chunkID)
	return nil
}

// neighborSignatures returns sig and every signature at Hamming
// distance exactly 1 from it, within numPlanes bits.
func neighborSignatures(sig uint64, numPlanes int) []uint64 {
	out := make([]uint64, 0, numPlanes+1)
	out = append(out, sig)
	for b := 0; b < numPlanes; b++ {
		out = append(out, sig^(1<<uint(b)))
	}
	return out
}

func (l *LSHIndex) Search(ctx context.Context, query []float32, k int, filter func(string) bool) ([]Result, error) {
	if len(query) != l.dim {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "query", "query dimension does not match library embedding_dim")
	}
	if k <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidK, "k", "k must be positive")
	}

	q := normalize(query)
	candidateSet := make(map[string]struct{})
	for t := 0; t < l.numTables; t++ {
		sig := l.signature(t, q)
		for _, neighborSig := range neighborSignatures(sig, l.numPlanes) {
			for _, id := range l.buckets[t][neighborSig] {
				candidateSet[id] = struct{}{}
			}
		}
	}

	target := k
	if target < lshOversampleFloor {
		target = lshOversampleFloor
	}

	// Fall back to a full scan when bucket probing starved out: this
	// keeps recall reasonable for small or skewed libraries instead
	// of returning an empty result.
	if len(candidateSet) < target {
		for id := range l.vectors {
			candidateSet[id] = struct{}{}
		}
	}

	scored := make([]Result, 0, len(candidateSet))
	for id := range candidateSet {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if !passes(filter, id) {
			continue
		}
		scored = append(scored, Result{ChunkID: id, Score: cosineSimilarity(q, l.vectors[id])})
	}

	sort.Slice(scored, func(i, j int) bool {
		return betterChunk(scoredChunk{id: scored[i].ChunkID, score: scored[i].Score}, scoredChunk{id: scored[j].ChunkID, score: scored[j].Score})
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (l *LSHIndex) Rebuild(ctx context.Context, vectors map[string][]float32) error {
	for t := range l.buckets {
		l.buckets[t] = make(map[uint64][]string)
	}
	l.vectors = make(map[string][]float32, len(vectors))
	l.signatures = make(map[string][]uint64, len(vectors))
	for id, v := range vectors {
		if len(v) != l.dim {
			return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
		}
		l.insert(id, normalize(v))
	}
	return nil
}
