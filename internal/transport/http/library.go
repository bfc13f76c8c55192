package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/service"
)

type createLibraryBody struct {
	Name         string              `json:"name"`
	EmbeddingDim int                 `json:"embedding_dim"`
	IndexConfig  entity.IndexConfig  `json:"index_config"`
	Metadata     map[string]string   `json:"metadata"`
}

func (s *Server) handleCreateLibrary(w http.ResponseWriter, r *http.Request) {
	var body createLibraryBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	lib, err := s.svc.CreateLibrary(r.Context(), service.CreateLibraryRequest{
		Name:         body.Name,
		EmbeddingDim: body.EmbeddingDim,
		IndexConfig:  body.IndexConfig,
		Metadata:     body.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lib)
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	lib, err := s.svc.GetLibrary(r.Context(), libraryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (s *Server) handleListLibraries(w http.ResponseWriter, r *http.Request) {
	libs := s.svc.ListLibraries(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"libraries": libs})
}

type updateLibraryConfigBody struct {
	IndexConfig     entity.IndexConfig `json:"index_config"`
	ExpectedVersion uint64             `json:"expected_version"`
}

func (s *Server) handleUpdateLibraryConfig(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	var body updateLibraryConfigBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	lib, err := s.svc.UpdateLibraryConfig(r.Context(), service.UpdateLibraryConfigRequest{
		LibraryID:       libraryID,
		NewIndexConfig:  body.IndexConfig,
		ExpectedVersion: body.ExpectedVersion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	if err := s.svc.DeleteLibrary(r.Context(), libraryID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
