package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorlib/internal/service"
)

type createDocumentBody struct {
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	var body createDocumentBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.svc.CreateDocument(r.Context(), service.CreateDocumentRequest{
		LibraryID: libraryID,
		Metadata:  body.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	doc, err := s.svc.GetDocument(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	docs, err := s.svc.ListDocumentsByLibrary(r.Context(), libraryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	if err := s.svc.DeleteDocument(r.Context(), documentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
