package service

import (
	"context"

	"github.com/Aman-CERP/vectorlib/internal/entity"
	"github.com/Aman-CERP/vectorlib/internal/index"
	"github.com/Aman-CERP/vectorlib/internal/searchcache"
	"github.com/Aman-CERP/vectorlib/internal/vdberr"
)

// SearchFilter narrows search results. DocumentID, if non-empty,
// restricts results to chunks of that document. MetadataEquals, if
// non-empty, requires every listed key/value pair to match a chunk's
// metadata exactly. Both conditions apply together when both are set.
type SearchFilter struct {
	DocumentID      string
	MetadataEquals  map[string]string
}

// SearchRequest is a k-NN query against one library.
type SearchRequest struct {
	LibraryID string
	Query     []float32
	K         int
	Filter    SearchFilter
}

// SearchHit pairs a scored result with its hydrated chunk.
type SearchHit struct {
	Chunk *entity.Chunk
	Score float32
}

func (f SearchFilter) key() string {
	base := searchcache.MetadataFilterKey(f.MetadataEquals)
	if f.DocumentID == "" {
		return base
	}
	return "doc=" + f.DocumentID + ";" + base
}

func (f SearchFilter) predicate(chunks *chunkLookup) func(string) bool {
	if f.DocumentID == "" && len(f.MetadataEquals) == 0 {
		return nil
	}
	return func(chunkID string) bool {
		c, ok := chunks.get(chunkID)
		if !ok {
			return false
		}
		if f.DocumentID != "" && c.DocumentID != f.DocumentID {
			return false
		}
		for k, v := range f.MetadataEquals {
			if c.Metadata[k] != v {
				return false
			}
		}
		return true
	}
}

// chunkLookup memoizes chunk repository reads within a single search so
// the filter predicate and the post-search hydration step don't fetch
// the same chunk twice.
type chunkLookup struct {
	repo  interface {
		Get(id string) (*entity.Chunk, error)
	}
	cache map[string]*entity.Chunk
}

func (l *chunkLookup) get(id string) (*entity.Chunk, bool) {
	if c, ok := l.cache[id]; ok {
		return c, true
	}
	c, err := l.repo.Get(id)
	if err != nil {
		return nil, false
	}
	l.cache[id] = c
	return c, true
}

// Search runs a k-NN query against a library and hydrates each hit's
// chunk through the repository. Query-empty and non-positive k are
// rejected before the read lock is taken.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	if len(req.Query) == 0 {
		return nil, vdberr.Validation(vdberr.CodeEmptyQuery, "query", "query embedding must not be empty")
	}
	if req.K <= 0 {
		return nil, vdberr.Validation(vdberr.CodeInvalidK, "k", "k must be positive")
	}

	var results []index.Result
	var cacheKey string

	err := s.locks.WithReadLock(req.LibraryID, func() error {
		lib, err := s.libraries.Get(req.LibraryID)
		if err != nil {
			return err
		}
		if len(req.Query) != lib.EmbeddingDim {
			return vdberr.Validation(vdberr.CodeDimensionMismatch, "query", "query dimension does not match library embedding_dim")
		}

		if s.cache != nil {
			cacheKey = searchcache.Key(req.LibraryID, lib.Version, req.Query, req.K, req.Filter.key())
			if cached, ok := s.cache.Get(cacheKey); ok {
				results = cached
				return nil
			}
		}

		idx, err := s.indexes.Get(req.LibraryID)
		if err != nil {
			return err
		}

		lookup := &chunkLookup{repo: s.chunks, cache: make(map[string]*entity.Chunk)}
		results, err = idx.Search(ctx, req.Query, req.K, req.Filter.predicate(lookup))
		if err != nil {
			return err
		}

		if s.cache != nil {
			s.cache.Put(cacheKey, results)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lookup := &chunkLookup{repo: s.chunks, cache: make(map[string]*entity.Chunk)}
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		chunk, ok := lookup.get(r.ChunkID)
		if !ok {
			// The chunk was deleted between search and hydration by a
			// writer that raced past this reader; skip rather than
			// surface a partial/stale hit.
			continue
		}
		hits = append(hits, SearchHit{Chunk: chunk, Score: r.Score})
	}
	return hits, nil
}
