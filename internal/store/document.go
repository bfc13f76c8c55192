package store

import (
	"sync"
	"time"

	"github.com/Aman-CERP/vectorlib/internal/cas"
	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// DocumentRepository holds every Document, with a secondary index from
// library id to the document ids it contains so cascade deletes and
// per-library listing don't need a full scan.
type DocumentRepository struct {
	mu             sync.RWMutex
	documents      map[string]*entity.Document
	byLibrary      map[string]map[string]struct{}
}

// NewDocumentRepository returns an empty DocumentRepository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		documents: make(map[string]*entity.Document),
		byLibrary: make(map[string]map[string]struct{}),
	}
}

func (r *DocumentRepository) Create(doc *entity.Document) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[doc.ID]; exists {
		return nil, vdberr.Conflict("document id already exists")
	}

	now := time.Now().UTC()
	stored := doc.Clone()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.documents[stored.ID] = stored

	if r.byLibrary[stored.LibraryID] == nil {
		r.byLibrary[stored.LibraryID] = make(map[string]struct{})
	}
	r.byLibrary[stored.LibraryID][stored.ID] = struct{}{}

	return stored.Clone(), nil
}

func (r *DocumentRepository) Get(id string) (*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.documents[id]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeDocumentNotFound, "document not found")
	}
	return doc.Clone(), nil
}

// ListByLibrary returns every document belonging to libraryID.
func (r *DocumentRepository) ListByLibrary(libraryID string) []*entity.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byLibrary[libraryID]
	out := make([]*entity.Document, 0, len(ids))
	for id := range ids {
		out = append(out, r.documents[id].Clone())
	}
	return out
}

func (r *DocumentRepository) UpdateIfVersion(id string, expectedVersion uint64, mutate func(*entity.Document)) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[id]
	if !ok {
		return nil, vdberr.NotFound(vdberr.CodeDocumentNotFound, "document not found")
	}
	if err := cas.CheckVersion(expectedVersion, doc.Version); err != nil {
		return nil, err
	}

	mutate(doc)
	doc.Version++
	doc.UpdatedAt = time.Now().UTC()
	return doc.Clone(), nil
}

// Restore inserts doc exactly as given, preserving its version and
// timestamps, and rebuilds the library secondary index entry. It is
// used to repopulate a repository from a snapshot; ordinary writers
// should use Create instead.
func (r *DocumentRepository) Restore(doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[doc.ID]; exists {
		return vdberr.Conflict("document id already exists")
	}
	stored := doc.Clone()
	r.documents[stored.ID] = stored
	if r.byLibrary[stored.LibraryID] == nil {
		r.byLibrary[stored.LibraryID] = make(map[string]struct{})
	}
	r.byLibrary[stored.LibraryID][stored.ID] = struct{}{}
	return nil
}

// Reset discards every document and its secondary index, leaving the
// repository empty. Used before restoring a snapshot so a reload
// reflects the file's current contents instead of conflicting with
// whatever was loaded before.
func (r *DocumentRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents = make(map[string]*entity.Document)
	r.byLibrary = make(map[string]map[string]struct{})
}

// Delete removes a document and its secondary index entry. It does not
// cascade to chunks; callers coordinate cascade deletion across
// repositories (see internal/service).
func (r *DocumentRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[id]
	if !ok {
		return vdberr.NotFound(vdberr.CodeDocumentNotFound, "document not found")
	}
	delete(r.documents, id)
	if set := r.byLibrary[doc.LibraryID]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(r.byLibrary, doc.LibraryID)
		}
	}
	return nil
}

// DeleteByLibrary removes every document belonging to libraryID,
// returning the deleted ids for cascade cleanup elsewhere.
func (r *DocumentRepository) DeleteByLibrary(libraryID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byLibrary[libraryID]
	deleted := make([]string, 0, len(ids))
	for id := range ids {
		delete(r.documents, id)
		deleted = append(deleted, id)
	}
	delete(r.byLibrary, libraryID)
	return deleted
}
