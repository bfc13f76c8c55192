package ui

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/index"
	"github.com/Aman-CERP/vectorlib/internal/lock"
	"github.com/Aman-CERP/vectorlib/internal/searchcache"
	"github.com/Aman-CERP/vectorlib/internal/service"
	"github.com/Aman-CERP/vectorlib/internal/store"
)

func newTestService() *service.Service {
	return service.New(service.Deps{
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

func TestStatsModelRowsReflectsLibraries(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	lib, err := svc.CreateLibrary(ctx, service.CreateLibraryRequest{Name: "docs", EmbeddingDim: 3})
	require.NoError(t, err)
	_, err = svc.CreateDocument(ctx, service.CreateDocumentRequest{LibraryID: lib.ID})
	require.NoError(t, err)

	m := statsModel{ctx: ctx, svc: svc}
	rows := m.rows()

	require.Len(t, rows, 1)
	require.Equal(t, "docs", rows[0][0])
	require.Equal(t, "flat", rows[0][1])
	require.Equal(t, "3", rows[0][2])
	require.Equal(t, "1", rows[0][3])
	require.Equal(t, "1", rows[0][4])
}

func TestStatsModelRowsEmptyWhenNoLibraries(t *testing.T) {
	m := statsModel{ctx: context.Background(), svc: newTestService()}
	require.Empty(t, m.rows())
}

func TestStatsModelQuitsOnKeypress(t *testing.T) {
	m := statsModel{ctx: context.Background(), svc: newTestService(), interval: RefreshInterval}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
}
