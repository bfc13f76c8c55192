package index

import (
	"context"
	"math/rand"
	"sort"

	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// ivfMaxIterations bounds the spherical k-means refinement loop run by
// Rebuild. Centroids on unit vectors converge quickly in practice; this
// is a safety cap, not a tuning knob callers are expected to reach.
const ivfMaxIterations = 25

// IVFIndex partitions vectors into numCentroids spherical clusters via
// k-means and, at search time, scans only the nprobe clusters whose
// centroid is closest to the query.
type IVFIndex struct {
	dim          int
	numCentroids int
	nprobe       int

	centroids [][]float32
	vectors   map[string][]float32
	assigned  map[string]int   // chunkID -> centroid index
	clusters  [][]string       // centroid index -> chunkIDs
}

// NewIVFIndex constructs an empty IVFIndex. Centroids are not seeded
// until the first Rebuild, since k-means needs data to seed from;
// Add/Update before the first Rebuild fall back to a single implicit
// cluster.
func NewIVFIndex(dim, numCentroids, nprobe int) (*IVFIndex, error) {
	if numCentroids <= 0 || nprobe <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "ivf", "num_centroids and nprobe must be positive")
	}
	if nprobe > numCentroids {
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "nprobe", "nprobe must not exceed num_centroids")
	}
	return &IVFIndex{
		dim:          dim,
		numCentroids: numCentroids,
		nprobe:       nprobe,
		vectors:      make(map[string][]float32),
		assigned:     make(map[string]int),
		clusters:     make([][]string, numCentroids),
	}, nil
}

func (ix *IVFIndex) Dim() int  { return ix.dim }
func (ix *IVFIndex) Size() int { return len(ix.vectors) }

func (ix *IVFIndex) nearestCentroid(v []float32) int {
	if len(ix.centroids) == 0 {
		return 0
	}
	best, bestScore := 0, float32(-2)
	for i, c := range ix.centroids {
		score := cosineSimilarity(v, c)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func (ix *IVFIndex) assign(chunkID string, v []float32) {
	c := ix.nearestCentroid(v)
	ix.vectors[chunkID] = v
	ix.assigned[chunkID] = c
	if c >= len(ix.clusters) {
		grown := make([][]string, c+1)
		copy(grown, ix.clusters)
		ix.clusters = grown
	}
	ix.clusters[c] = append(ix.clusters[c], chunkID)
}

func (ix *IVFIndex) unassign(chunkID string) {
	c, ok := ix.assigned[chunkID]
	if !ok {
		return
	}
	bucket := ix.clusters[c]
	for i, id := range bucket {
		if id == chunkID {
			ix.clusters[c] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	delete(ix.vectors, chunkID)
	delete(ix.assigned, chunkID)
}

func (ix *IVFIndex) Add(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != ix.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := ix.vectors[chunkID]; exists {
		return vdberr.Conflict("chunk already present in index")
	}
	ix.assign(chunkID, normalize(vector))
	return nil
}

func (ix *IVFIndex) Update(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) != ix.dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
	}
	if _, exists := ix.vectors[chunkID]; !exists {
		return vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not present in index")
	}
	ix.unassign(chunkID)
	ix.assign(chunkID, normalize(vector))
	return nil
}

func (ix *IVFIndex) Remove(ctx context.Context, chunkID string) error {
	ix.unassign(chunkID)
	return nil
}

func (ix *IVFIndex) Search(ctx context.Context, query []float32, k int, filter func(string) bool) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "query", "query dimension does not match library embedding_dim")
	}
	if k <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidK, "k", "k must be positive")
	}

	q := normalize(query)

	var probeClusters []int
	if len(ix.centroids) == 0 {
		probeClusters = []int{0}
	} else {
		type centroidDist struct {
			idx   int
			score float32
		}
		dists := make([]centroidDist, len(ix.centroids))
		for i, c := range ix.centroids {
			dists[i] = centroidDist{idx: i, score: cosineSimilarity(q, c)}
		}
		sort.Slice(dists, func(i, j int) bool { return dists[i].score > dists[j].score })
		probe := ix.nprobe
		if probe > len(dists) {
			probe = len(dists)
		}
		for i := 0; i < probe; i++ {
			probeClusters = append(probeClusters, dists[i].idx)
		}
	}

	scored := make([]Result, 0)
	for _, c := range probeClusters {
		if c >= len(ix.clusters) {
			continue
		}
		for _, id := range ix.clusters[c] {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			if !passes(filter, id) {
				continue
			}
			scored = append(scored, Result{ChunkID: id, Score: cosineSimilarity(q, ix.vectors[id])})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return betterChunk(scoredChunk{id: scored[i].ChunkID, score: scored[i].Score}, scoredChunk{id: scored[j].ChunkID, score: scored[j].Score})
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Rebuild re-seeds centroids with k-means++ and runs spherical k-means
// to convergence (or ivfMaxIterations, whichever comes first), then
// files every vector under the centroid it was assigned to in the last
// iteration.
func (ix *IVFIndex) Rebuild(ctx context.Context, vectors map[string][]float32) error {
	ids := make([]string, 0, len(vectors))
	normalized := make(map[string][]float32, len(vectors))
	for id, v := range vectors {
		if len(v) != ix.dim {
			return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "vector dimension does not match library embedding_dim")
		}
		ids = append(ids, id)
		normalized[id] = normalize(v)
	}
	sort.Strings(ids)

	k := ix.numCentroids
	if k > len(ids) {
		k = len(ids)
	}
	if k == 0 {
		ix.centroids = nil
		ix.vectors = make(map[string][]float32)
		ix.assigned = make(map[string]int)
		ix.clusters = make([][]string, ix.numCentroids)
		return nil
	}

	centroids := seedKMeansPlusPlus(ids, normalized, k)

	var clusterOf map[string]int
	for iter := 0; iter < ivfMaxIterations; iter++ {
		clusterOf = make(map[string]int, len(ids))
		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for i := range sums {
			sums[i] = make([]float64, ix.dim)
		}

		for _, id := range ids {
			v := normalized[id]
			best, bestScore := 0, float32(-2)
			for ci, c := range centroids {
				score := cosineSimilarity(v, c)
				if score > bestScore {
					best, bestScore = ci, score
				}
			}
			clusterOf[id] = best
			counts[best]++
			for d := 0; d < ix.dim; d++ {
				sums[best][d] += float64(v[d])
			}
		}

		changed := false
		next := make([][]float32, len(centroids))
		for ci := range centroids {
			if counts[ci] == 0 {
				next[ci] = centroids[ci]
				continue
			}
			raw := make([]float32, ix.dim)
			for d := 0; d < ix.dim; d++ {
				raw[d] = float32(sums[ci][d] / float64(counts[ci]))
			}
			next[ci] = normalize(raw)
			if cosineSimilarity(next[ci], centroids[ci]) < 0.999999 {
				changed = true
			}
		}
		centroids = next
		if !changed {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	ix.centroids = centroids
	ix.vectors = normalized
	ix.assigned = clusterOf
	ix.clusters = make([][]string, len(centroids))
	for id, ci := range clusterOf {
		ix.clusters[ci] = append(ix.clusters[ci], id)
	}
	return nil
}

// seedKMeansPlusPlus picks k initial centroids with probability
// proportional to squared distance from the nearest already-chosen
// centroid, spreading the seeds across the data instead of clumping
// them in one dense region.
func seedKMeansPlusPlus(ids []string, vectors map[string][]float32, k int) [][]float32 {
	src := rand.New(rand.NewSource(1))
	first := ids[src.Intn(len(ids))]
	centroids := [][]float32{vectors[first]}

	for len(centroids) < k {
		distances := make([]float64, len(ids))
		var total float64
		for i, id := range ids {
			v := vectors[id]
			minDist := 2.0
			for _, c := range centroids {
				d := 1 - float64(cosineSimilarity(v, c))
				if d < minDist {
					minDist = d
				}
			}
			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			centroids = append(centroids, vectors[ids[src.Intn(len(ids))]])
			continue
		}

		target := src.Float64() * total
		var cumulative float64
		chosen := ids[len(ids)-1]
		for i, id := range ids {
			cumulative += distances[i]
			if cumulative >= target {
				chosen = id
				break
			}
		}
		centroids = append(centroids, vectors[chosen])
	}
	return centroids
}
