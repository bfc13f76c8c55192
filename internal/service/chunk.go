package service

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/vectorlib/internal/cas"
	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// CreateChunkRequest carries the fields needed to create a chunk.
// DocumentID is optional: an empty string means the chunk belongs
// directly to the library.
type CreateChunkRequest struct {
	LibraryID  string
	DocumentID string
	Text       string
	Position   int
	Embedding  []float32
	Metadata   map[string]string
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func validateEmbedding(embedding []float32, dim int) error {
	if len(embedding) != dim {
		return vdberr.Validation(vdberr.CodeDimensionMismatch, "embedding", "embedding length does not match library embedding_dim")
	}
	if isZeroVector(embedding) {
		return vdberr.Validation(vdberr.CodeZeroVector, "embedding", "embedding must not be the zero vector")
	}
	return nil
}

// CreateChunk validates and inserts a single chunk, adding it to the
// library's index in the same critical section.
func (s *Service) CreateChunk(ctx context.Context, req CreateChunkRequest) (*entity.Chunk, error) {
	var created *entity.Chunk
	err := s.locks.WithWriteLock(req.LibraryID, func() error {
		lib, err := s.libraries.Get(req.LibraryID)
		if err != nil {
			return err
		}
		if err := validateEmbedding(req.Embedding, lib.EmbeddingDim); err != nil {
			return err
		}
		if req.DocumentID != "" {
			if _, err := s.documents.Get(req.DocumentID); err != nil {
				return err
			}
		}

		idx, err := s.indexes.Get(req.LibraryID)
		if err != nil {
			return err
		}

		chunk := &entity.Chunk{
			ID:         uuid.NewString(),
			LibraryID:  req.LibraryID,
			DocumentID: req.DocumentID,
			Position:   req.Position,
			Text:       req.Text,
			Embedding:  req.Embedding,
			Metadata:   req.Metadata,
		}

		created, err = s.chunks.Create(chunk)
		if err != nil {
			return err
		}

		if err := idx.Add(ctx, created.ID, created.Embedding); err != nil {
			_ = s.chunks.Delete(created.ID)
			return vdberr.Wrap(vdberr.CodeIndexFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// BulkUpsertRequest is a batch of chunks to create in one library. Per
// spec, the batch is atomic per-batch: either every chunk is persisted
// and indexed, or none are.
type BulkUpsertRequest struct {
	LibraryID string
	Chunks    []CreateChunkRequest
}

// validatedChunk is the product of the parallel validation phase: a
// chunk request paired with its assigned id, ready for serialized
// mutation.
type validatedChunk struct {
	id  string
	req CreateChunkRequest
}

// BulkUpsert validates every chunk's shape concurrently (embedding
// dimension, zero-vector) using a bounded worker pool, checks that each
// referenced document exists, then performs the actual repository and index mutation
// serially under the library's single write lock so the batch commits
// or fails as one unit.
func (s *Service) BulkUpsert(ctx context.Context, req BulkUpsertRequest) ([]*entity.Chunk, error) {
	lib, err := s.libraries.Get(req.LibraryID)
	if err != nil {
		return nil, err
	}

	validated := make([]validatedChunk, len(req.Chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range req.Chunks {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err := validateEmbedding(c.Embedding, lib.EmbeddingDim); err != nil {
				return err
			}
			validated[i] = validatedChunk{id: uuid.NewString(), req: c}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Validate referenced documents exist; done outside the worker
	// pool since it shares the document repository's own lock and
	// gains nothing from parallelism here.
	seenDocs := make(map[string]struct{})
	for _, v := range validated {
		if v.req.DocumentID == "" {
			continue
		}
		if _, ok := seenDocs[v.req.DocumentID]; ok {
			continue
		}
		if _, err := s.documents.Get(v.req.DocumentID); err != nil {
			return nil, err
		}
		seenDocs[v.req.DocumentID] = struct{}{}
	}

	var results []*entity.Chunk
	err = s.locks.WithWriteLock(req.LibraryID, func() error {
		idx, err := s.indexes.Get(req.LibraryID)
		if err != nil {
			return err
		}

		created := make([]*entity.Chunk, 0, len(validated))
		indexed := make([]string, 0, len(validated))

		revert := func() {
			for _, c := range created {
				_ = s.chunks.Delete(c.ID)
			}
			for _, id := range indexed {
				_ = idx.Remove(ctx, id)
			}
		}

		for _, v := range validated {
			chunk := &entity.Chunk{
				ID:         v.id,
				LibraryID:  req.LibraryID,
				DocumentID: v.req.DocumentID,
				Position:   v.req.Position,
				Text:       v.req.Text,
				Embedding:  v.req.Embedding,
				Metadata:   v.req.Metadata,
			}
			stored, err := s.chunks.Create(chunk)
			if err != nil {
				revert()
				return err
			}
			created = append(created, stored)

			if err := idx.Add(ctx, stored.ID, stored.Embedding); err != nil {
				revert()
				return vdberr.Wrap(vdberr.CodeIndexFailed, err)
			}
			indexed = append(indexed, stored.ID)
		}

		results = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk upsert committed", slog.String("library_id", req.LibraryID), slog.Int("count", len(results)))
	return results, nil
}

// UpdateChunkRequest describes a partial chunk update. Nil fields are
// left unchanged. ExpectedVersion of zero means the caller did not
// supply a precondition: the service reads the current version itself
// and retries internally on a race, bounded by MaxCASRetries. A
// nonzero ExpectedVersion is a single-shot CAS check — a mismatch is
// the caller's own stale read and is returned as a conflict rather
// than retried on its behalf.
type UpdateChunkRequest struct {
	ChunkID         string
	Text            *string
	Embedding       []float32
	Metadata        map[string]string
	ExpectedVersion uint64
}

func (s *Service) applyChunkUpdate(ctx context.Context, req UpdateChunkRequest, expectedVersion uint64) (*entity.Chunk, error) {
	chunk, err := s.chunks.Get(req.ChunkID)
	if err != nil {
		return nil, err
	}

	var dimToValidate int
	if req.Embedding != nil {
		lib, err := s.libraries.Get(chunk.LibraryID)
		if err != nil {
			return nil, err
		}
		dimToValidate = lib.EmbeddingDim
		if err := validateEmbedding(req.Embedding, dimToValidate); err != nil {
			return nil, err
		}
	}

	var updated *entity.Chunk
	err = s.locks.WithWriteLock(chunk.LibraryID, func() error {
		idx, err := s.indexes.Get(chunk.LibraryID)
		if err != nil {
			return err
		}

		prevEmbedding := chunk.Embedding
		prevText := chunk.Text
		prevMetadata := chunk.Metadata

		updated, err = s.chunks.UpdateIfVersion(req.ChunkID, expectedVersion, func(c *entity.Chunk) {
			if req.Text != nil {
				c.Text = *req.Text
			}
			if req.Embedding != nil {
				c.Embedding = req.Embedding
			}
			if req.Metadata != nil {
				c.Metadata = req.Metadata
			}
		})
		if err != nil {
			return err
		}

		if req.Embedding != nil {
			if err := idx.Update(ctx, req.ChunkID, req.Embedding); err != nil {
				// Revert the repository write to the pre-update state.
				_, _ = s.chunks.UpdateIfVersion(req.ChunkID, updated.Version, func(c *entity.Chunk) {
					c.Embedding = prevEmbedding
					c.Text = prevText
					c.Metadata = prevMetadata
				})
				return vdberr.Wrap(vdberr.CodeIndexFailed, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateChunk applies req's fields to the chunk identified by
// req.ChunkID.
func (s *Service) UpdateChunk(ctx context.Context, req UpdateChunkRequest) (*entity.Chunk, error) {
	if req.ExpectedVersion != 0 {
		updated, err := s.applyChunkUpdate(ctx, req, req.ExpectedVersion)
		if err != nil && vdberr.Is(err, vdberr.KindConflict) {
			s.logger.Warn("chunk update conflict", slog.String("chunk_id", req.ChunkID))
		}
		return updated, err
	}

	attempt := 0
	updated, err := cas.Mutate(ctx,
		func() (*entity.Chunk, error) { return s.chunks.Get(req.ChunkID) },
		func(current *entity.Chunk) (*entity.Chunk, error) {
			if attempt > 0 {
				s.logger.Warn("chunk update retrying after conflict", slog.String("chunk_id", req.ChunkID), slog.Int("attempt", attempt))
			}
			attempt++
			return s.applyChunkUpdate(ctx, req, current.Version)
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteChunk removes a chunk and its index entry.
func (s *Service) DeleteChunk(ctx context.Context, chunkID string) error {
	chunk, err := s.chunks.Get(chunkID)
	if err != nil {
		return err
	}

	return s.locks.WithWriteLock(chunk.LibraryID, func() error {
		idx, err := s.indexes.Get(chunk.LibraryID)
		if err != nil {
			return err
		}
		if err := s.chunks.Delete(chunkID); err != nil {
			return err
		}
		if err := idx.Remove(ctx, chunkID); err != nil {
			s.logger.Error("failed to remove chunk from index", slog.String("chunk_id", chunkID), slog.String("error", err.Error()))
		}
		return nil
	})
}

// CreateDocumentWithChunksRequest creates a document and its initial
// chunks as one atomic unit.
type CreateDocumentWithChunksRequest struct {
	LibraryID        string
	DocumentMetadata map[string]string
	Chunks           []CreateChunkRequest
}

// CreateDocumentWithChunks creates a document, then every chunk in the
// request bound to it, all under a single write-lock critical section.
func (s *Service) CreateDocumentWithChunks(ctx context.Context, req CreateDocumentWithChunksRequest) (*entity.Document, []*entity.Chunk, error) {
	var doc *entity.Document
	var chunks []*entity.Chunk

	err := s.locks.WithWriteLock(req.LibraryID, func() error {
		lib, err := s.libraries.Get(req.LibraryID)
		if err != nil {
			return err
		}
		idx, err := s.indexes.Get(req.LibraryID)
		if err != nil {
			return err
		}

		for _, c := range req.Chunks {
			if err := validateEmbedding(c.Embedding, lib.EmbeddingDim); err != nil {
				return err
			}
		}

		doc, err = s.documents.Create(&entity.Document{
			ID:        uuid.NewString(),
			LibraryID: req.LibraryID,
			Metadata:  req.DocumentMetadata,
		})
		if err != nil {
			return err
		}

		created := make([]*entity.Chunk, 0, len(req.Chunks))
		indexed := make([]string, 0, len(req.Chunks))
		revert := func() {
			for _, c := range created {
				_ = s.chunks.Delete(c.ID)
			}
			for _, id := range indexed {
				_ = idx.Remove(ctx, id)
			}
			_ = s.documents.Delete(doc.ID)
		}

		for _, c := range req.Chunks {
			stored, err := s.chunks.Create(&entity.Chunk{
				ID:         uuid.NewString(),
				LibraryID:  req.LibraryID,
				DocumentID: doc.ID,
				Position:   c.Position,
				Text:       c.Text,
				Embedding:  c.Embedding,
				Metadata:   c.Metadata,
			})
			if err != nil {
				revert()
				return err
			}
			created = append(created, stored)

			if err := idx.Add(ctx, stored.ID, stored.Embedding); err != nil {
				revert()
				return vdberr.Wrap(vdberr.CodeIndexFailed, err)
			}
			indexed = append(indexed, stored.ID)
		}

		chunks = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, chunks, nil
}
