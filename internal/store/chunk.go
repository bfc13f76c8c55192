package store

import (
	"sync"
	"time"

	"github.com/Aman-CERP/vectorlib/internal/cas"
	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// ChunkRepository holds every Chunk, with secondary indexes from
// library id and document id to the chunk ids they contain.
type ChunkRepository struct {
	mu          sync.RWMutex
	chunks      map[string]*entity.Chunk
	byLibrary   map[string]map[string]struct{}
	byDocument  map[string]map[string]struct{}
}

// NewChunkRepository returns an empty ChunkRepository.
func NewChunkRepository() *ChunkRepository {
	return &ChunkRepository{
		chunks:     make(map[string]*entity.Chunk),
		byLibrary:  make(map[string]map[string]struct{}),
		byDocument: make(map[string]map[string]struct{}),
	}
}

func (r *ChunkRepository) Create(chunk *entity.Chunk) (*entity.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chunks[chunk.ID]; exists {
		return nil, vdberr.Conflict("chunk id already exists")
	}

	now := time.Now().UTC()
	stored := chunk.Clone()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.chunks[stored.ID] = stored

	r.indexAdd(stored)

	return stored.Clone(), nil
}

func (r *ChunkRepository) indexAdd(c *entity.Chunk) {
	if r.byLibrary[c.LibraryID] == nil {
		r.byLibrary[c.LibraryID] = make(map[string]struct{})
	}
	r.byLibrary[c.LibraryID][c.ID] = struct{}{}

	if c.DocumentID != "" {
		if r.byDocument[c.DocumentID] == nil {
			r.byDocument[c.DocumentID] = make(map[string]struct{})
		}
		r.byDocument[c.DocumentID][c.ID] = struct{}{}
	}
}

func (r *ChunkRepository) indexRemove(c *entity.Chunk) {
	if set := r.byLibrary[c.LibraryID]; set != nil {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(r.byLibrary, c.LibraryID)
		}
	}
	if c.DocumentID != "" {
		if set := r.byDocument[c.DocumentID]; set != nil {
			delete(set, c.ID)
			if len(set) == 0 {
				delete(r.byDocument, c.DocumentID)
			}
		}
	}
}

func (r *ChunkRepository) Get(id string) (*entity.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chunks[id]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not found")
	}
	return c.Clone(), nil
}

// ListByLibrary returns every chunk belonging to libraryID.
func (r *ChunkRepository) ListByLibrary(libraryID string) []*entity.Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byLibrary[libraryID]
	out := make([]*entity.Chunk, 0, len(ids))
	for id := range ids {
		out = append(out, r.chunks[id].Clone())
	}
	return out
}

// VectorsByLibrary returns a library's chunk embeddings keyed by chunk
// id, the shape internal/index.Rebuild expects.
func (r *ChunkRepository) VectorsByLibrary(libraryID string) map[string][]float32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byLibrary[libraryID]
	out := make(map[string][]float32, len(ids))
	for id := range ids {
		c := r.chunks[id]
		vec := make([]float32, len(c.Embedding))
		copy(vec, c.Embedding)
		out[id] = vec
	}
	return out
}

// ListByDocument returns every chunk belonging to documentID.
func (r *ChunkRepository) ListByDocument(documentID string) []*entity.Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byDocument[documentID]
	out := make([]*entity.Chunk, 0, len(ids))
	for id := range ids {
		out = append(out, r.chunks[id].Clone())
	}
	return out
}

// UpdateIfVersion applies mutate to the stored chunk if expectedVersion
// matches (or is zero). DocumentID and LibraryID are immutable; mutate
// must not change them. This method does not check that; the service
// layer's update request has no field for either.
func (r *ChunkRepository) UpdateIfVersion(id string, expectedVersion uint64, mutate func(*entity.Chunk)) (*entity.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chunks[id]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not found")
	}
	if err := cas.CheckVersion(expectedVersion, c.Version); err != nil {
		return nil, err
	}

	mutate(c)
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	return c.Clone(), nil
}

// Restore inserts chunk exactly as given, preserving its version and
// timestamps, and rebuilds its secondary index entries. It is used to
// repopulate a repository from a snapshot; ordinary writers should use
// Create instead.
func (r *ChunkRepository) Restore(chunk *entity.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chunks[chunk.ID]; exists {
		return vdberr.Conflict("chunk id already exists")
	}
	stored := chunk.Clone()
	r.chunks[stored.ID] = stored
	r.indexAdd(stored)
	return nil
}

// Reset discards every chunk and its secondary indexes, leaving the
// repository empty. Used before restoring a snapshot so a reload
// reflects the file's current contents instead of conflicting with
// whatever was loaded before.
func (r *ChunkRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = make(map[string]*entity.Chunk)
	r.byLibrary = make(map[string]map[string]struct{})
	r.byDocument = make(map[string]map[string]struct{})
}

// Delete removes a chunk and its secondary index entries.
func (r *ChunkRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chunks[id]
	if !ok {
		return vdberr.NotFound(vdberr.CodeChunkNotFound, "chunk not found")
	}
	delete(r.chunks, id)
	r.indexRemove(c)
	return nil
}

// DeleteByLibrary removes every chunk belonging to libraryID, returning
// the deleted ids for index cleanup.
func (r *ChunkRepository) DeleteByLibrary(libraryID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byLibrary[libraryID]
	deleted := make([]string, 0, len(ids))
	for id := range ids {
		c := r.chunks[id]
		delete(r.chunks, id)
		if c.DocumentID != "" {
			if set := r.byDocument[c.DocumentID]; set != nil {
				delete(set, id)
				if len(set) == 0 {
					delete(r.byDocument, c.DocumentID)
				}
			}
		}
		deleted = append(deleted, id)
	}
	delete(r.byLibrary, libraryID)
	return deleted
}

// DeleteByDocument removes every chunk belonging to documentID, also
// updating the library secondary index, and returns the deleted ids.
func (r *ChunkRepository) DeleteByDocument(documentID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byDocument[documentID]
	deleted := make([]string, 0, len(ids))
	for id := range ids {
		c := r.chunks[id]
		delete(r.chunks, id)
		if set := r.byLibrary[c.LibraryID]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(r.byLibrary, c.LibraryID)
			}
		}
		deleted = append(deleted, id)
	}
	delete(r.byDocument, documentID)
	return deleted
}
