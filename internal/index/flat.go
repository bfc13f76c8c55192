package index

import (
	"container/heap"
	"context"

	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// FlatIndex performs exact nearest-neighbor search by scanning every
// stored vector. It is the correctness baseline the other strategies
// are measured against.
type FlatIndex struct {
	dim     int
	vectors map[string][]float32
}

// NewFlatIndex constructs an empty FlatIndex for the given dimension.
func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

func (f *FlatIndex) Dim() int  { return f.dim }
func (f *FlatIndex) Size() int { return len(f.vectors) }

func (f *FlatIndex) Add(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != f.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := f.vectors[chunkID]; exists {
		return vdberr.Conflict("chunk already present in index")
	}
	f.vectors[chunkID] = normalize(vector)
	return nil
}

func (f *FlatIndex) Update(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != f.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := f.vectors[chunkID]; !exists {
		return vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not present in index")
	}
	f.vectors[chunkID] = normalize(vector)
	return nil
}

func (f *FlatIndex) Remove(ctx context.Context, chunkID string) error {
	delete(f.vectors, chunkID)
	return nil
}

// scoredChunk is the min-heap element used to keep only the best k
// results while scanning every vector once.
type scoredChunk struct {
	id    string
	score float32
}

// betterChunk reports whether a ranks ahead of b: higher score wins,
// ties broken by ascending chunk id per spec.
func betterChunk(a, b scoredChunk) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.id < b.id
}

type topKHeap []scoredChunk

// Less orders the heap so the worst-ranked element (per betterChunk)
// sits at the root, making it the cheapest to evict as better
// candidates arrive.
func (h topKHeap) Less(i, j int) bool  { return betterChunk(h[j], h[i]) }
func (h topKHeap) Len() int            { return len(h) }
func (h topKHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *topKHeap) Push(x interface{}) { *h = append(*h, x.(scoredChunk)) }
func (h *topKHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (f *FlatIndex) Search(ctx context.Context, query []float32, k int, filter func(string) bool) ([]Result, error) {
	if len(query) != f.dim {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "query", "query dimension does not match library embedding_dim")
	}
	if k <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidK, "k", "k must be positive")
	}

	q := normalize(query)
	h := &topKHeap{}
	heap.Init(h)

	for id, vec := range f.vectors {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if !passes(filter, id) {
			continue
		}
		candidate := scoredChunk{id: id, score: cosineSimilarity(q, vec)}
		if h.Len() < k {
			heap.Push(h, candidate)
		} else if h.Len() > 0 && betterChunk(candidate, (*h)[0]) {
			heap.Pop(h)
			heap.Push(h, candidate)
		}
	}

	out := make([]Result, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		item := heap.Pop(h).(scoredChunk)
		out[i] = Result{ChunkID: item.id, Score: item.score}
	}
	return out, nil
}

func (f *FlatIndex) Rebuild(ctx context.Context, vectors map[string][]float32) error {
	fresh := make(map[string][]float32, len(vectors))
	for id, v := range vectors {
		if len(v) != f.dim {
			return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
		}
		fresh[id] = normalize(v)
	}
	f.vectors = fresh
	return nil
}
