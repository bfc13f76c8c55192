package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorlib/internal/service"
)

type searchFilterBody struct {
	DocumentID     string            `json:"document_id"`
	MetadataEquals map[string]string `json:"metadata_equals"`
}

type searchBody struct {
	Query  []float32        `json:"query"`
	K      int              `json:"k"`
	Filter searchFilterBody `json:"filter"`
}

type searchHitResponse struct {
	Chunk any     `json:"chunk"`
	Score float32 `json:"score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	var body searchBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	hits, err := s.svc.Search(r.Context(), service.SearchRequest{
		LibraryID: libraryID,
		Query:     body.Query,
		K:         body.K,
		Filter: service.SearchFilter{
			DocumentID:     body.Filter.DocumentID,
			MetadataEquals: body.Filter.MetadataEquals,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]searchHitResponse, len(hits))
	for i, h := range hits {
		out[i] = searchHitResponse{Chunk: h.Chunk, Score: h.Score}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}
