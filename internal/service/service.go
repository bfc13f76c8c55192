// Package service implements the transactional choreography described
// in the concurrency fabric: for every mutating use case it acquires a
// library's lock, validates preconditions, writes the repository,
// updates the index, advances the version, and releases the lock —
// reverting the repository write if the index update fails.
package service

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/vectorlib/internal/cas"
	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/index"
	"github.com/Aman-CERP/vectorlib/internal/lock"
	"github.com/Aman-CERP/vectorlib/internal/searchcache"
	"github.com/Aman-CERP/vectorlib/internal/store"
)

// MaxCASRetries bounds the internal re-read/retry loop a mutation runs
// when it was not given an explicit expected_version by the caller
// (see chunk.go UpdateChunk, the one path that exercises internal/cas).
// Updates that do supply an expected_version get a single CAS attempt:
// a mismatch there is the caller's own stale read and is returned as a
// conflict for the caller to resolve, not retried on its behalf.
const MaxCASRetries = cas.MaxRetries

// Service is the root of the core: every use case hangs off it.
type Service struct {
	libraries *store.LibraryRepository
	documents *store.DocumentRepository
	chunks    *store.ChunkRepository
	locks     *lock.Registry
	indexes   *index.Registry
	cache     *searchcache.Cache
	logger    *slog.Logger

	defaultIndexConfig entity.IndexConfig
}

// Deps wires a Service's collaborators. Cache may be nil to disable
// search result caching.
type Deps struct {
	Libraries           *store.LibraryRepository
	Documents           *store.DocumentRepository
	Chunks              *store.ChunkRepository
	Locks               *lock.Registry
	Indexes             *index.Registry
	Cache               *searchcache.Cache
	Logger              *slog.Logger
	DefaultIndexConfig  entity.IndexConfig
}

// New constructs a Service from deps, defaulting Logger to slog.Default
// when unset.
func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		libraries:           deps.Libraries,
		documents:           deps.Documents,
		chunks:              deps.Chunks,
		locks:               deps.Locks,
		indexes:             deps.Indexes,
		cache:               deps.Cache,
		logger:              logger,
		defaultIndexConfig:  deps.DefaultIndexConfig,
	}
}

// RebuildAll rebuilds every library's index from its chunk repository,
// one library at a time under its write lock. Called at process start
// and after loading a snapshot, since snapshots never persist index
// internal state.
func (s *Service) RebuildAll() error {
	for _, lib := range s.libraries.List() {
		id := lib.ID
		var chunkCount int
		if err := s.locks.WithWriteLock(id, func() error {
			vectors := s.chunks.VectorsByLibrary(id)
			chunkCount = len(vectors)
			_, err := s.indexes.Swap(context.Background(), id, lib.IndexConfig, lib.EmbeddingDim, vectors)
			return err
		}); err != nil {
			return err
		}
		s.logger.Info("index rebuilt", slog.String("library_id", id), slog.Int("chunk_count", chunkCount))
	}
	return nil
}
