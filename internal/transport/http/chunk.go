package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorlib/internal/service"
)

type chunkBody struct {
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	Position   int               `json:"position"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata"`
}

func (b chunkBody) toRequest(libraryID string) service.CreateChunkRequest {
	return service.CreateChunkRequest{
		LibraryID:  libraryID,
		DocumentID: b.DocumentID,
		Text:       b.Text,
		Position:   b.Position,
		Embedding:  b.Embedding,
		Metadata:   b.Metadata,
	}
}

func (s *Server) handleCreateChunk(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	var body chunkBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	chunk, err := s.svc.CreateChunk(r.Context(), body.toRequest(libraryID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chunk)
}

type bulkUpsertBody struct {
	Chunks []chunkBody `json:"chunks"`
}

func (s *Server) handleBulkUpsert(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	var body bulkUpsertBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	reqs := make([]service.CreateChunkRequest, len(body.Chunks))
	for i, c := range body.Chunks {
		reqs[i] = c.toRequest(libraryID)
	}

	chunks, err := s.svc.BulkUpsert(r.Context(), service.BulkUpsertRequest{
		LibraryID: libraryID,
		Chunks:    reqs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"chunks": chunks})
}

type updateChunkBody struct {
	Text            *string           `json:"text"`
	Embedding       []float32         `json:"embedding"`
	Metadata        map[string]string `json:"metadata"`
	ExpectedVersion uint64            `json:"expected_version"`
}

func (s *Server) handleUpdateChunk(w http.ResponseWriter, r *http.Request) {
	chunkID := chi.URLParam(r, "chunkID")
	var body updateChunkBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	chunk, err := s.svc.UpdateChunk(r.Context(), service.UpdateChunkRequest{
		ChunkID:         chunkID,
		Text:            body.Text,
		Embedding:       body.Embedding,
		Metadata:        body.Metadata,
		ExpectedVersion: body.ExpectedVersion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chunk)
}

func (s *Server) handleDeleteChunk(w http.ResponseWriter, r *http.Request) {
	chunkID := chi.URLParam(r, "chunkID")
	if err := s.svc.DeleteChunk(r.Context(), chunkID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createDocumentWithChunksBody struct {
	DocumentMetadata map[string]string `json:"document_metadata"`
	Chunks           []chunkBody       `json:"chunks"`
}

func (s *Server) handleCreateDocumentWithChunks(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	var body createDocumentWithChunksBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	reqs := make([]service.CreateChunkRequest, len(body.Chunks))
	for i, c := range body.Chunks {
		reqs[i] = c.toRequest(libraryID)
	}

	doc, chunks, err := s.svc.CreateDocumentWithChunks(r.Context(), service.CreateDocumentWithChunksRequest{
		LibraryID:        libraryID,
		DocumentMetadata: body.DocumentMetadata,
		Chunks:           reqs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"document": doc, "chunks": chunks})
}
