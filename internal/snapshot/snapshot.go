// Package snapshot writes and reads a JSON snapshot of every library,
// document, and chunk. The snapshot never stores index internal state;
// on load the caller rebuilds every index from the restored chunks.
// Save is guarded by a cross-process exclusive file lock so two
// processes pointed at the same snapshot path can't interleave writes.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/store"
)

// Document is the JSON shape of the snapshot file.
type Document struct {
	Libraries []*entity.Library  `json:"libraries"`
	Documents []*entity.Document `json:"documents"`
	Chunks    []*entity.Chunk    `json:"chunks"`
}

// fileLock returns the cross-process lock guarding path, at
// path+".lock".
func fileLock(path string) *flock.Flock {
	return flock.New(path + ".lock")
}

// Save writes every library, document, and chunk in the given
// repositories to path as JSON, holding an exclusive file lock for the
// duration of the write.
func Save(path string, libraries *store.LibraryRepository, documents *store.DocumentRepository, chunks *store.ChunkRepository) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	lock := fileLock(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire snapshot lock: %w", err)
	}
	defer lock.Unlock()

	doc := Document{}
	for _, lib := range libraries.List() {
		doc.Libraries = append(doc.Libraries, lib)
		for _, d := range documents.ListByLibrary(lib.ID) {
			doc.Documents = append(doc.Documents, d)
		}
		for _, c := range chunks.ListByLibrary(lib.ID) {
			doc.Chunks = append(doc.Chunks, c)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// Load reads path and replaces the contents of libraries/documents/chunks
// with what the file holds. A missing file is not an error: repositories
// are left untouched and ok is false. Indexes are never touched here; the
// caller is expected to rebuild them from the restored chunk repository
// afterward.
//
// Load performs a full replace, not a merge: it clears each repository
// before restoring, so a reload reflects exactly what's in the file,
// including libraries/documents/chunks removed since the previous load.
// Without this, reloading the same or an updated snapshot while the
// process keeps running would conflict against entities restored by an
// earlier Load.
func Load(path string, libraries *store.LibraryRepository, documents *store.DocumentRepository, chunks *store.ChunkRepository) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	lock := fileLock(path)
	if err := lock.Lock(); err != nil {
		return false, fmt.Errorf("failed to acquire snapshot lock: %w", err)
	}
	defer lock.Unlock()

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	libraries.Reset()
	documents.Reset()
	chunks.Reset()

	for _, lib := range doc.Libraries {
		if err := libraries.Restore(lib); err != nil {
			return false, fmt.Errorf("failed to restore library %s: %w", lib.ID, err)
		}
	}
	for _, d := range doc.Documents {
		if err := documents.Restore(d); err != nil {
			return false, fmt.Errorf("failed to restore document %s: %w", d.ID, err)
		}
	}
	for _, c := range doc.Chunks {
		if err := chunks.Restore(c); err != nil {
			return false, fmt.Errorf("failed to restore chunk %s: %w", c.ID, err)
		}
	}

	return true, nil
}
