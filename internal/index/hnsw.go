package index

import (
	"context"

	"github.com/coder/hnsw"

	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// HNSWIndex is the optional fourth strategy, wrapping coder/hnsw's pure
// Go graph. It is not part of the mandatory Flat/LSH/IVF trio but is
// offered to libraries that want sub-linear search with better recall
// than LSH at large scale.
//
// coder/hnsw has no safe node deletion: removing the last node in the
// graph corrupts it. HNSWIndex works around this with lazy deletion:
// Remove and Update-of-existing-id just drop the id
// mapping, leaving an orphaned node in the graph that Search filters
// out by failing the keyMap lookup.
type HNSWIndex struct {
	dim   int
	graph *hnsw.Graph[uint64]

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

// NewHNSWIndex constructs an HNSWIndex configured for cosine distance.
// m and efSearch fall back to coder/hnsw's recommended defaults when
// zero.
func NewHNSWIndex(dim, m, efSearch int) (*HNSWIndex, error) {
	if dim <= 0 {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding_dim", "embedding dimension must be positive")
	}
	if m == 0 {
		m = 16
	}
	if efSearch == 0 {
		efSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = m
	graph.EfSearch = efSearch
	graph.Ml = 0.25

	return &HNSWIndex{
		dim:    dim,
		graph:  graph,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}, nil
}

func (h *HNSWIndex) Dim() int  { return h.dim }
func (h *HNSWIndex) Size() int { return len(h.idMap) }

func (h *HNSWIndex) insert(chunkID string, vec []float32) {
	if existing, exists := h.idMap[chunkID]; exists {
		delete(h.keyMap, existing)
		delete(h.idMap, chunkID)
	}
	key := h.nextKey
	h.nextKey++
	h.graph.Add(hnsw.MakeNode(key, vec))
	h.idMap[chunkID] = key
	h.keyMap[key] = chunkID
}

func (h *HNSWIndex) Add(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != h.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := h.idMap[chunkID]; exists {
		return vdberr.Conflict("chunk already present in index")
	}
	h.insert(chunkID, normalize(vector))
	return nil
}

func (h *HNSWIndex) Update(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != h.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := h.idMap[chunkID]; !exists {
		return vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not present in index")
	}
	h.insert(chunkID, normalize(vector))
	return nil
}

func (h *HNSWIndex) Remove(ctx context.Context, chunkID string) error {
	if key, exists := h.idMap[chunkID]; exists {
		delete(h.keyMap, key)
		delete(h.idMap, chunkID)
	}
	return nil
}

func (h *HNSWIndex) Search(ctx context.Context, query []float32, k int, filter func(string) bool) ([]Result, error) {
	if len(query) != h.dim {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "query", "query dimension does not match library embedding_dim")
	}
	if k <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidK, "k", "k must be positive")
	}
	if h.graph.Len() == 0 {
		return []Result{}, nil
	}

	q := normalize(query)

	// Lazily deleted nodes can outnumber live ids, and a filter can
	// reject a further fraction, so over-fetch generously and trim
	// once filtered; this mirrors the oversample the LSH strategy
	// uses to keep small-k queries stable against orphaned candidates.
	fetch := k + (h.graph.Len() - len(h.idMap))
	if filter != nil && h.graph.Len() > fetch {
		fetch = h.graph.Len()
	}
	if fetch < 1 {
		fetch = 1
	}

	nodes := h.graph.Search(q, fetch)
	out := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		id, ok := h.keyMap[node.Key]
		if !ok || !passes(filter, id) {
			continue
		}
		dist := h.graph.Distance(q, node.Value)
		out = append(out, Result{ChunkID: id, Score: 1 - dist})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (h *HNSWIndex) Rebuild(ctx context.Context, vectors map[string][]float32) error {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = h.graph.Distance
	graph.M = h.graph.M
	graph.EfSearch = h.graph.EfSearch
	graph.Ml = h.graph.Ml

	h.graph = graph
	h.idMap = make(map[string]uint64, len(vectors))
	h.keyMap = make(map[uint64]string, len(vectors))
	h.nextKey = 0

	for id, v := range vectors {
		if len(v) != h.dim {
			return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
		}
		h.insert(id, normalize(v))
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
