package service

import "github.com/Aman-CERP/vectorlib/internal/snapshot"

// SaveSnapshot writes every library, document, and chunk to path.
func (s *Service) SaveSnapshot(path string) error {
	return snapshot.Save(path, s.libraries, s.documents, s.chunks)
}

// LoadSnapshot replaces libraries, documents, and chunks with the
// contents of path and rebuilds every index from the restored chunks.
// loaded is false when path does not exist, in which case the service
// is left untouched. Safe to call repeatedly against a changing file
// (e.g. from a background watcher): each call fully replaces prior
// state rather than merging into it, so indexes for libraries no
// longer present in the snapshot are dropped along with their data.
func (s *Service) LoadSnapshot(path string) (loaded bool, err error) {
	ok, err := snapshot.Load(path, s.libraries, s.documents, s.chunks)
	if err != nil || !ok {
		return ok, err
	}
	s.indexes.Reset()
	if err := s.RebuildAll(); err != nil {
		return true, err
	}
	return true, nil
}
