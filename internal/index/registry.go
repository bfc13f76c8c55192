package index

import (
	"context"
	"sync"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// Registry owns the one Index instance per library and keeps it aligned
// with the library's current configuration and dimension. Callers must
// hold the library's write lock (internal/lock) around any call that
// mutates an index; Registry itself only serializes the registry's own
// bookkeeping, not index contents.
type Registry struct {
	mu      sync.Mutex
	indexes map[string]Index
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{indexes: make(map[string]Index)}
}

// Ensure returns the index for libraryID, creating it from cfg/dim if
// absent. It does not reconcile an existing index against a changed
// cfg; call Swap for that.
func (r *Registry) Ensure(libraryID string, cfg entity.IndexConfig, dim int) (Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.indexes[libraryID]; ok {
		return idx, nil
	}
	idx, err := New(cfg, dim)
	if err != nil {
		return nil, err
	}
	r.indexes[libraryID] = idx
	return idx, nil
}

// Get returns the index for libraryID, or a not_found error if the
// library has no registered index.
func (r *Registry) Get(libraryID string) (Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.indexes[libraryID]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeIndexNotFound, "no index registered for library")
	}
	return idx, nil
}

// Swap replaces libraryID's index with a freshly built one for cfg/dim,
// rebuilding it from vectors in one step. Used when a library's
// index_config changes and an incremental update can't satisfy the new
// strategy (e.g. IVF recentroiding needs the full vector set).
func (r *Registry) Swap(ctx context.Context, libraryID string, cfg entity.IndexConfig, dim int, vectors map[string][]float32) (Index, error) {
	idx, err := New(cfg, dim)
	if err != nil {
		return nil, err
	}
	if err := idx.Rebuild(ctx, vectors); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.indexes[libraryID] = idx
	r.mu.Unlock()
	return idx, nil
}

// Drop removes libraryID's index entirely, e.g. when the library is
// deleted.
func (r *Registry) Drop(libraryID string) {
	r.mu.Lock()
	delete(r.indexes, libraryID)
	r.mu.Unlock()
}

// Reset drops every registered index. Used when a snapshot reload
// replaces the entire repository contents, so stale indexes for
// libraries absent from the new snapshot don't linger.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexes = make(map[string]Index)
}

// LibraryIDs returns the ids of every library with a registered index,
// in no particular order.
func (r *Registry) LibraryIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.indexes))
	for id := range r.indexes {
		ids = append(ids, id)
	}
	return ids
}
