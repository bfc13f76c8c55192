// Package http is a thin REST adapter over internal/service. It owns
// request decoding, response encoding, and vdberr.Kind-to-status
// mapping; none of that leaks back into the core.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Aman-CERP/vectorlib/internal/service"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// Server wires HTTP routes to a Service.
type Server struct {
	svc    *service.Service
	router chi.Router
}

// New constructs a Server with every route registered.
func New(svc *service.Service) *Server {
	s := &Server{svc: svc, router: chi.NewRouter()}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/libraries", func(r chi.Router) {
		r.Post("/", s.handleCreateLibrary)
		r.Get("/", s.handleListLibraries)
		r.Route("/{libraryID}", func(r chi.Router) {
			r.Get("/", s.handleGetLibrary)
			r.Patch("/", s.handleUpdateLibraryConfig)
			r.Delete("/", s.handleDeleteLibrary)
			r.Post("/search", s.handleSearch)
			r.Post("/documents", s.handleCreateDocument)
			r.Get("/documents", s.handleListDocuments)
			r.Post("/chunks", s.handleCreateChunk)
			r.Post("/chunks/bulk", s.handleBulkUpsert)
			r.Post("/documents-with-chunks", s.handleCreateDocumentWithChunks)
		})
	})

	s.router.Route("/documents/{documentID}", func(r chi.Router) {
		r.Get("/", s.handleGetDocument)
		r.Delete("/", s.handleDeleteDocument)
	})

	s.router.Route("/chunks/{chunkID}", func(r chi.Router) {
		r.Patch("/", s.handleUpdateChunk)
		r.Delete("/", s.handleDeleteChunk)
	})

	return s
}

// ServeHTTP lets Server satisfy http.Handler directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a vdberr.Kind to an HTTP status code and writes the
// error's JSON form. A plain error that never touched vdberr is
// treated as internal.
func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	body, marshalErr := vdberr.FormatJSON(err)
	if marshalErr != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func statusForError(err error) int {
	var ve *vdberr.Error
	if !errors.As(err, &ve) {
		return http.StatusInternalServerError
	}
	switch ve.Kind {
	case vdberr.KindNotFound:
		return http.StatusNotFound
	case vdberr.KindValidation:
		return http.StatusBadRequest
	case vdberr.KindConflict:
		return http.StatusConflict
	case vdberr.KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return vdberr.Validation(vdberr.CodeInvalidField, "body", "malformed request body: "+err.Error())
	}
	return nil
}
