// Package store provides in-memory repositories for libraries,
// documents, and chunks. Every read returns a deep copy so callers
// can't mutate state behind the repository's back; every write bumps
// the entity's version under the repository's own mutex, but callers
// needing compare-and-swap semantics layer internal/cas on top using
// the version returned here.
package store

import (
	"sync"
	"time"

	"github.com/Aman-CERP/vectorlib/internal/cas"
	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// LibraryRepository holds every Library, keyed by id.
type LibraryRepository struct {
	mu        sync.RWMutex
	libraries map[string]*entity.Library
}

// NewLibraryRepository returns an empty LibraryRepository.
func NewLibraryRepository() *LibraryRepository {
	return &LibraryRepository{libraries: make(map[string]*entity.Library)}
}

// Create inserts a new library. The caller is expected to have already
// assigned an id; Create fails with conflict if that id is taken.
func (r *LibraryRepository) Create(lib *entity.Library) (*entity.Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.libraries[lib.ID]; exists {
		return nil, vdberr.Conflict("library id already exists")
	}

	now := time.Now().UTC()
	stored := lib.Clone()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.libraries[stored.ID] = stored
	return stored.Clone(), nil
}

// Get returns a deep copy of the library, or not_found.
func (r *LibraryRepository) Get(id string) (*entity.Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lib, ok := r.libraries[id]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeLibraryNotFound, "library not found")
	}
	return lib.Clone(), nil
}

// List returns a deep copy of every library.
func (r *LibraryRepository) List() []*entity.Library {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Library, 0, len(r.libraries))
	for _, lib := range r.libraries {
		out = append(out, lib.Clone())
	}
	return out
}

// UpdateIfVersion applies mutate to the stored library if expectedVersion
// matches (or is zero), bumping Version and UpdatedAt on success. It
// returns the updated library's deep copy.
func (r *LibraryRepository) UpdateIfVersion(id string, expectedVersion uint64, mutate func(*entity.Library)) (*entity.Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lib, ok := r.libraries[id]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeLibraryNotFound, "library not found")
	}
	if err := cas.CheckVersion(expectedVersion, lib.Version); err != nil {
		return nil, err
	}

	mutate(lib)
	lib.Version++
	lib.UpdatedAt = time.Now().UTC()
	return lib.Clone(), nil
}

// Restore inserts lib exactly as given, preserving its version and
// timestamps. It is used to repopulate a repository from a snapshot;
// ordinary writers should use Create instead.
func (r *LibraryRepository) Restore(lib *entity.Library) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.libraries[lib.ID]; exists {
		return vdberr.Conflict("library id already exists")
	}
	r.libraries[lib.ID] = lib.Clone()
	return nil
}

// Reset discards every library, leaving the repository empty. Used
// before restoring a snapshot so a reload reflects the file's current
// contents instead of conflicting with whatever was loaded before.
func (r *LibraryRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libraries = make(map[string]*entity.Library)
}

// Delete removes a library by id. Deleting an absent id is not_found.
func (r *LibraryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.libraries[id]; !ok {
		return vdberr.NotFound(vdberr.CodeLibraryNotFound, "library not found")
	}
	delete(r.libraries, id)
	return nil
}
