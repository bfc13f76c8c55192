package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Aman-CERP/vectorlib/internal/entity"
)

// CreateDocumentRequest carries the fields needed to create a document.
type CreateDocumentRequest struct {
	LibraryID string
	Metadata  map[string]string
}

// CreateDocument creates a document under libraryID.
func (s *Service) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*entity.Document, error) {
	var created *entity.Document
	err := s.locks.WithWriteLock(req.LibraryID, func() error {
		if _, err := s.libraries.Get(req.LibraryID); err != nil {
			return err
		}
		doc := &entity.Document{
			ID:        uuid.NewString(),
			LibraryID: req.LibraryID,
			Metadata:  req.Metadata,
		}
		var err error
		created, err = s.documents.Create(doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetDocument returns a document by id under its library's read lock.
func (s *Service) GetDocument(ctx context.Context, documentID string) (*entity.Document, error) {
	doc, err := s.documents.Get(documentID)
	if err != nil {
		return nil, err
	}
	var out *entity.Document
	err = s.locks.WithReadLock(doc.LibraryID, func() error {
		var err error
		out, err = s.documents.Get(documentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListDocumentsByLibrary returns every document in libraryID.
func (s *Service) ListDocumentsByLibrary(ctx context.Context, libraryID string) ([]*entity.Document, error) {
	var out []*entity.Document
	err := s.locks.WithReadLock(libraryID, func() error {
		if _, err := s.libraries.Get(libraryID); err != nil {
			return err
		}
		out = s.documents.ListByLibrary(libraryID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDocument removes a document and, in the same critical section,
// every chunk belonging to it, including their index entries.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := s.documents.Get(documentID)
	if err != nil {
		return err
	}

	return s.locks.WithWriteLock(doc.LibraryID, func() error {
		idx, err := s.indexes.Get(doc.LibraryID)
		if err != nil {
			return err
		}
		deletedChunks := s.chunks.DeleteByDocument(documentID)
		for _, chunkID := range deletedChunks {
			if err := idx.Remove(context.Background(), chunkID); err != nil {
				s.logger.Error("failed to remove chunk from index during document delete",
					slog.String("document_id", documentID), slog.String("chunk_id", chunkID), slog.String("error", err.Error()))
			}
		}
		return s.documents.Delete(documentID)
	})
}
