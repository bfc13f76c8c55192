package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

func TestDocumentRepositoryCreateAssignsVersionOne(t *testing.T) {
	repo := NewDocumentRepository()
	doc, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), doc.Version)
	require.False(t, doc.CreatedAt.IsZero())
}

func TestDocumentRepositoryCreateDuplicateIDConflicts(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.NoError(t, err)

	_, err = repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.True(t, vdberr.Is(err, vdberr.KindConflict))
}

func TestDocumentRepositoryGetReturnsDeepCopy(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1", Metadata: map[string]string{"k": "v"}})
	require.NoError(t, err)

	doc, err := repo.Get("doc-1")
	require.NoError(t, err)
	doc.Metadata["k"] = "mutated"

	again, err := repo.Get("doc-1")
	require.NoError(t, err)
	require.Equal(t, "v", again.Metadata["k"])
}

func TestDocumentRepositoryGetNotFound(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Get("missing")
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
}

func TestDocumentRepositoryListByLibrary(t *testing.T) {
	repo := NewDocumentRepository()
	_, _ = repo.Create(&entity.Document{ID: "a", LibraryID: "lib-1"})
	_, _ = repo.Create(&entity.Document{ID: "b", LibraryID: "lib-1"})
	_, _ = repo.Create(&entity.Document{ID: "c", LibraryID: "lib-2"})

	require.Len(t, repo.ListByLibrary("lib-1"), 2)
	require.Len(t, repo.ListByLibrary("lib-2"), 1)
	require.Empty(t, repo.ListByLibrary("missing"))
}

func TestDocumentRepositoryUpdateIfVersionRejectsStale(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.NoError(t, err)

	_, err = repo.UpdateIfVersion("doc-1", 99, func(d *entity.Document) {})
	require.True(t, vdberr.Is(err, vdberr.KindConflict))
}

func TestDocumentRepositoryUpdateIfVersionBumpsVersion(t *testing.T) {
	repo := NewDocumentRepository()
	created, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.NoError(t, err)

	updated, err := repo.UpdateIfVersion("doc-1", created.Version, func(d *entity.Document) {
		d.Metadata = map[string]string{"x": "1"}
	})
	require.NoError(t, err)
	require.Equal(t, uint64(2), updated.Version)
	require.Equal(t, "1", updated.Metadata["x"])
}

func TestDocumentRepositoryDelete(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete("doc-1"))
	_, err = repo.Get("doc-1")
	require.True(t, vdberr.Is(err, vdberr.KindNotFound))
	require.Empty(t, repo.ListByLibrary("lib-1"))

	require.True(t, vdberr.Is(repo.Delete("doc-1"), vdberr.KindNotFound))
}

func TestDocumentRepositoryDeleteByLibrary(t *testing.T) {
	repo := NewDocumentRepository()
	_, _ = repo.Create(&entity.Document{ID: "a", LibraryID: "lib-1"})
	_, _ = repo.Create(&entity.Document{ID: "b", LibraryID: "lib-1"})
	_, _ = repo.Create(&entity.Document{ID: "c", LibraryID: "lib-2"})

	deleted := repo.DeleteByLibrary("lib-1")
	require.ElementsMatch(t, []string{"a", "b"}, deleted)
	require.Empty(t, repo.ListByLibrary("lib-1"))
	require.Len(t, repo.ListByLibrary("lib-2"), 1)
}

func TestDocumentRepositoryRestorePreservesVersionAndTimestamps(t *testing.T) {
	repo := NewDocumentRepository()
	require.NoError(t, repo.Restore(&entity.Document{ID: "doc-1", LibraryID: "lib-1", Version: 4}))

	got, err := repo.Get("doc-1")
	require.NoError(t, err)
	require.Equal(t, uint64(4), got.Version)
	require.Len(t, repo.ListByLibrary("lib-1"), 1)
}

func TestDocumentRepositoryRestoreDuplicateConflicts(t *testing.T) {
	repo := NewDocumentRepository()
	require.NoError(t, repo.Restore(&entity.Document{ID: "doc-1", LibraryID: "lib-1"}))
	err := repo.Restore(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.True(t, vdberr.Is(err, vdberr.KindConflict))
}

func TestDocumentRepositoryResetClearsSecondaryIndex(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Create(&entity.Document{ID: "doc-1", LibraryID: "lib-1"})
	require.NoError(t, err)

	repo.Reset()
	require.Empty(t, repo.ListByLibrary("lib-1"))

	require.NoError(t, repo.Restore(&entity.Document{ID: "doc-1", LibraryID: "lib-1"}))
	require.Len(t, repo.ListByLibrary("lib-1"), 1)
}
