package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// CreateLibraryRequest carries the fields a caller supplies to create a
// library. IndexConfig is optional; a zero value (empty Type) means
// "use the service's configured default".
type CreateLibraryRequest struct {
	Name         string
	EmbeddingDim int
	IndexConfig  entity.IndexConfig
	Metadata     map[string]string
}

// CreateLibrary validates the request, assigns an id, and atomically
// establishes the library's repository record, lock, and empty index.
func (s *Service) CreateLibrary(ctx context.Context, req CreateLibraryRequest) (*entity.Library, error) {
	if req.Name == "" {
		return nil, vdberr.Validation(vdberr.CodeInvalidField, "name", "name must not be empty")
	}
	if req.EmbeddingDim <= 0 {
		return nil, vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding_dim", "embedding_dim must be positive")
	}

	cfg := req.IndexConfig
	if cfg.Type == "" {
		cfg = s.defaultIndexConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "index_config", err.Error())
	}

	id := uuid.NewString()
	lib := &entity.Library{
		ID:           id,
		Name:         req.Name,
		EmbeddingDim: req.EmbeddingDim,
		IndexConfig:  cfg,
		Metadata:     req.Metadata,
	}

	var created *entity.Library
	err := s.locks.WithWriteLock(id, func() error {
		var err error
		created, err = s.libraries.Create(lib)
		if err != nil {
			return err
		}
		if _, err := s.indexes.Ensure(id, cfg, req.EmbeddingDim); err != nil {
			// Revert the repository write: creation is all-or-nothing.
			_ = s.libraries.Delete(id)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("library created", slog.String("library_id", id), slog.String("index_type", string(cfg.Type)))
	return created, nil
}

// GetLibrary returns a library by id under its read lock.
func (s *Service) GetLibrary(ctx context.Context, libraryID string) (*entity.Library, error) {
	var lib *entity.Library
	err := s.locks.WithReadLock(libraryID, func() error {
		var err error
		lib, err = s.libraries.Get(libraryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// ListLibraries returns every library. Each library's own metadata is
// already protected by the repository's internal mutex; no per-library
// lock is needed for a top-level listing.
func (s *Service) ListLibraries(ctx context.Context) []*entity.Library {
	return s.libraries.List()
}

// UpdateLibraryConfigRequest describes an index configuration change.
type UpdateLibraryConfigRequest struct {
	LibraryID       string
	NewIndexConfig  entity.IndexConfig
	ExpectedVersion uint64
}

// UpdateLibraryConfig swaps a library's index strategy, rebuilding the
// new index from the current chunk set before the swap becomes visible.
func (s *Service) UpdateLibraryConfig(ctx context.Context, req UpdateLibraryConfigRequest) (*entity.Library, error) {
	if err := req.NewIndexConfig.Validate(); err != nil {
		return nil, vdberr.Validation(vdberr.CodeInvalidIndexConfig, "index_config", err.Error())
	}

	var updated *entity.Library
	err := s.locks.WithWriteLock(req.LibraryID, func() error {
		lib, err := s.libraries.Get(req.LibraryID)
		if err != nil {
			return err
		}

		vectors := s.chunks.VectorsByLibrary(req.LibraryID)
		if _, err := s.indexes.Swap(ctx, req.LibraryID, req.NewIndexConfig, lib.EmbeddingDim, vectors); err != nil {
			return err
		}

		updated, err = s.libraries.UpdateIfVersion(req.LibraryID, req.ExpectedVersion, func(l *entity.Library) {
			l.IndexConfig = req.NewIndexConfig
		})
		return err
	})
	if err != nil {
		if vdberr.Is(err, vdberr.KindConflict) {
			s.logger.Warn("library config update conflict", slog.String("library_id", req.LibraryID))
		}
		return nil, err
	}

	s.logger.Info("library index swapped", slog.String("library_id", req.LibraryID), slog.String("index_type", string(req.NewIndexConfig.Type)))
	return updated, nil
}

// DeleteLibrary removes a library and, in the same critical section,
// every one of its documents, chunks, its lock, and its index.
func (s *Service) DeleteLibrary(ctx context.Context, libraryID string) error {
	err := s.locks.WithWriteLock(libraryID, func() error {
		if _, err := s.libraries.Get(libraryID); err != nil {
			return err
		}
		s.chunks.DeleteByLibrary(libraryID)
		s.documents.DeleteByLibrary(libraryID)
		s.indexes.Drop(libraryID)
		return s.libraries.Delete(libraryID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("library deleted", slog.String("library_id", libraryID))
	return nil
}
