package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/index"
	"github.com/Aman-CERP/vectorlib/internal/lock"
	"github.com/Aman-CERP/vectorlib/internal/searchcache"
	"github.com/Aman-CERP/vectorlib/internal/store"
)

func newTestService() *Service {
	return New(Deps{
		Libraries:          store.NewLibraryRepository(),
		Documents:          store.NewDocumentRepository(),
		Chunks:             store.NewChunkRepository(),
		Locks:              lock.NewRegistry(),
		Indexes:            index.NewRegistry(),
		Cache:              searchcache.New(64),
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultIndexConfig: entity.IndexConfig{Type: entity.IndexFlat},
	})
}
